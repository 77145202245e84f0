package service

import (
	"context"
	"log/slog"

	"github.com/dom/movie-wallet/internal/repository"
)

// blobCleanup defers blob deletions until the record write that makes them
// safe has either committed or failed. Replaced images go on the commit list,
// freshly uploaded ones on the rollback list.
type blobCleanup struct {
	images     repository.ImageStore
	onCommit   []string
	onRollback []string
}

func newBlobCleanup(images repository.ImageStore) *blobCleanup {
	return &blobCleanup{images: images}
}

func (c *blobCleanup) deleteOnCommit(storageID string) {
	if storageID != "" {
		c.onCommit = append(c.onCommit, storageID)
	}
}

func (c *blobCleanup) deleteOnRollback(storageID string) {
	if storageID != "" {
		c.onRollback = append(c.onRollback, storageID)
	}
}

func (c *blobCleanup) commit(ctx context.Context) {
	c.run(ctx, c.onCommit, "commit")
	c.onCommit, c.onRollback = nil, nil
}

func (c *blobCleanup) rollback(ctx context.Context) {
	c.run(ctx, c.onRollback, "rollback")
	c.onCommit, c.onRollback = nil, nil
}

// run is best effort: failures are logged and never surface to the caller.
func (c *blobCleanup) run(ctx context.Context, ids []string, phase string) {
	ctx = context.WithoutCancel(ctx)
	for _, id := range ids {
		if err := c.images.Delete(ctx, id); err != nil {
			slog.WarnContext(ctx, "image cleanup failed",
				"component", "movie_service",
				"phase", phase,
				"storage_id", id,
				"error", err,
			)
		}
	}
}
