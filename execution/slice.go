package execution

import (
	"crypto/rand"
	"fmt"
	"strings"

	"github.com/oklog/ulid/v2"
)

type Slice struct {
	source Node
	offset int
	// limit of -1 means no limit.
	limit int
}

func NewSlice(source Node, offset, limit int) *Slice {
	return &Slice{
		source: source,
		offset: offset,
		limit:  limit,
	}
}

func (s *Slice) Run(ctx ExecutionContext, produce ProduceFn) error {
	sliceNodeID := ulid.MustNew(ulid.Now(), rand.Reader).String()

	skipped := 0
	produced := 0
	if err := s.source.Run(ctx, func(produceCtx ProduceContext, record Record) error {
		if skipped < s.offset {
			skipped++
			return nil
		}
		if s.limit >= 0 && produced >= s.limit {
			// Returned to stop underlying processing once the limit has been
			// reached. Caught and silenced below.
			return fmt.Errorf("slice limit %s reached", sliceNodeID)
		}
		if err := produce(produceCtx, record); err != nil {
			return fmt.Errorf("couldn't produce: %w", err)
		}
		produced++
		return nil
	}); err != nil {
		if strings.Contains(err.Error(), fmt.Sprintf("slice limit %s reached", sliceNodeID)) {
			return nil
		}
		return fmt.Errorf("couldn't run source: %w", err)
	}
	return nil
}
