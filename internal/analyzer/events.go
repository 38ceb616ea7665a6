package analyzer

import (
	"encoding/json"
	"fmt"

	"github.com/google/uuid"

	"github.com/kestrelvoice/callaudit/internal/bus"
)

func parseTranscriptEvent(data []byte) (uuid.UUID, error) {
	var evt bus.TranscriptStoredEvent
	if err := json.Unmarshal(data, &evt); err != nil {
		return uuid.Nil, fmt.Errorf("unmarshal event: %w", err)
	}
	id, err := uuid.Parse(evt.CallID)
	if err != nil {
		return uuid.Nil, fmt.Errorf("invalid call id %q: %w", evt.CallID, err)
	}
	return id, nil
}
