package handlers

import (
	"time"

	"linkcard/internal/attachment"
	"linkcard/internal/bitmapcache"
	"linkcard/internal/database"
	"linkcard/internal/fetch"
	"linkcard/internal/startup"
)

type Handlers struct {
	db           *database.Database
	store        *attachment.Store
	fetcher      *fetch.Fetcher
	bitmaps      *bitmapcache.Cache
	imageTimeout time.Duration
	startTime    time.Time
}

func New(db *database.Database, store *attachment.Store, fetcher *fetch.Fetcher, bitmaps *bitmapcache.Cache, config *startup.Config) *Handlers {
	return &Handlers{
		db:           db,
		store:        store,
		fetcher:      fetcher,
		bitmaps:      bitmaps,
		imageTimeout: config.ImageTimeout,
		startTime:    time.Now(),
	}
}
