package sync

import (
	_ "embed"
	"encoding/json"

	"github.com/google/uuid"
	"github.com/moneyfold/backend/internal/remote"
	"github.com/rs/zerolog/log"
)

// seedData is the bundled bootstrap data set used when the remote store is
// unreachable on first start and no local cache exists. A convenience, not
// a durability guarantee.
//
//go:embed seed.json
var seedData []byte

func seedSnapshot(userID uuid.UUID) remote.Snapshot {
	var snapshot remote.Snapshot
	err := json.Unmarshal(seedData, &snapshot)
	if err != nil {
		// The seed ships with the binary, a parse failure is a build defect
		log.Error().Err(err).Msg("bundled seed snapshot is invalid")
		return remote.Snapshot{}
	}

	for i := range snapshot.Envelopes {
		snapshot.Envelopes[i].ID = uuid.New()
		snapshot.Envelopes[i].UserID = userID
	}

	return snapshot
}
