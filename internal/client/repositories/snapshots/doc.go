// Package snapshots keeps the last successfully fetched dashboard payload
// per crop, so the terminal client can show something when the backend is
// unreachable.
//
//	repo := snapshots.NewSQLiteRepository(db)
//	_ = repo.Save(ctx, "cotton", payload, time.Now())
//	snap, err := repo.Get(ctx, "cotton") // common.ErrorNotFound when absent
package snapshots
