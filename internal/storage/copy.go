package storage

import (
	"context"
	"fmt"

	"github.com/TheVortexX/OncoTrack-sub000/internal/constants"
)

// UserCollections are the collections that belong to a user, in copy order.
var UserCollections = []string{
	constants.CollectionSettings,
	constants.CollectionMedications,
	constants.CollectionAppointments,
	constants.CollectionIntakeLogs,
}

// CopyUser copies every document of userID from src into dst and returns
// the number copied per collection. Pending alerts are not copied; their
// handles are stale in dst until the user's reminders are rescheduled.
func CopyUser(ctx context.Context, src, dst Provider, userID string) (map[string]int, error) {
	counts := make(map[string]int, len(UserCollections))
	for _, collection := range UserCollections {
		c, err := UserCollection(userID, collection)
		if err != nil {
			return counts, err
		}
		docs, err := src.Query(ctx, c)
		if err != nil {
			return counts, fmt.Errorf("failed to read %s: %w", collection, err)
		}
		for _, d := range docs {
			if err := dst.Set(ctx, d.Path, d.Data); err != nil {
				return counts, fmt.Errorf("failed to write %s: %w", d.Path, err)
			}
			counts[collection]++
		}
	}
	return counts, nil
}
