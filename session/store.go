package session

import (
	"context"

	"webassist/model"
	"webassist/storage"
)

// Responder answers one turn. assistant.Service is the production
// implementation.
type Responder interface {
	Respond(ctx context.Context, req model.Request) (model.Response, error)
}

// Store persists sessions. storage.FileStore, storage.RedisStore and
// storage.MemoryStore satisfy it.
type Store interface {
	Save(ctx context.Context, session *storage.Session) error
	Load(ctx context.Context, id string) (*storage.Session, error)
	List(ctx context.Context) ([]storage.SessionMetadata, error)
	Delete(ctx context.Context, id string) error
	SaveCurrentSessionID(id string) error
	LoadCurrentSessionID() (string, error)
}

// Journal records turn attempts. storage.Journal satisfies it.
type Journal interface {
	Record(ctx context.Context, rec storage.TurnRecord) error
	Stats(ctx context.Context, sessionID string) (storage.TurnStats, error)
	Forget(ctx context.Context, sessionID string) error
}

func toStorageMessages(messages []model.Message) []storage.Message {
	out := make([]storage.Message, 0, len(messages))
	for _, msg := range messages {
		sm := storage.Message{
			Role:      msg.Role,
			Content:   msg.Content,
			Reasoning: msg.Reasoning,
			Timestamp: msg.Timestamp,
		}
		for _, inv := range msg.ToolTrace {
			sm.ToolTrace = append(sm.ToolTrace, storage.ToolInvocation{
				Name:      inv.Name,
				Arguments: inv.Arguments,
				Result:    inv.Result,
			})
		}
		out = append(out, sm)
	}
	return out
}

func fromStorageMessages(messages []storage.Message) []model.Message {
	out := make([]model.Message, 0, len(messages))
	for _, sm := range messages {
		msg := model.Message{
			Role:      sm.Role,
			Content:   sm.Content,
			Reasoning: sm.Reasoning,
			Timestamp: sm.Timestamp,
		}
		for _, inv := range sm.ToolTrace {
			msg.ToolTrace = append(msg.ToolTrace, model.ToolInvocation{
				Name:      inv.Name,
				Arguments: inv.Arguments,
				Result:    inv.Result,
			})
		}
		out = append(out, msg)
	}
	return out
}
