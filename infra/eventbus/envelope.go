package eventbus

import (
	"encoding/json"
	"fmt"

	"github.com/zezva802/Banking-system/pkg/domain/events"
)

type envelope struct {
	Type    events.EventType `json:"type"`
	Payload json.RawMessage  `json:"payload"`
}

func buildEnvelope(event events.Event) ([]byte, error) {
	data, err := json.Marshal(event)
	if err != nil {
		return nil, fmt.Errorf("marshal %s: %w", event.Type(), err)
	}
	envBytes, err := json.Marshal(envelope{Type: event.Type(), Payload: data})
	if err != nil {
		return nil, fmt.Errorf("marshal envelope %s: %w", event.Type(), err)
	}
	return envBytes, nil
}

// partitionKey keeps every event about one account on one partition.
func partitionKey(event events.Event) string {
	switch e := event.(type) {
	case events.TransferFinalized:
		return e.SenderAccountID.String()
	case *events.TransferFinalized:
		return e.SenderAccountID.String()
	case events.WithdrawalCompleted:
		return e.AccountID.String()
	case *events.WithdrawalCompleted:
		return e.AccountID.String()
	default:
		return string(event.Type())
	}
}
