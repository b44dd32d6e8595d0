package poll

import (
	"github.com/Alwanly/attribute-poll/pkg/attribute"
	"github.com/Alwanly/attribute-poll/pkg/logger"
	"github.com/Alwanly/attribute-poll/pkg/resolver"
)

// markRule is the resolver get rule for poll marks. Clearing the parent's
// reported value makes the resolver read it from the device; giving the mark
// itself a value keeps the resolver from visiting it again.
func markRule(store attribute.Store, log *logger.CanonicalLogger) resolver.Rule {
	return func(mark attribute.ID) (resolver.Status, []byte, error) {
		parent, err := store.Parent(mark)
		if err != nil {
			return resolver.StatusFail, nil, err
		}
		if err := store.SetReported(parent, nil); err != nil {
			return resolver.StatusFail, nil, err
		}
		if err := store.SetReported(mark, uint8(0)); err != nil {
			log.WithError(err).Warn("cannot set the reported value of the poll mark", logger.Attribute(uint64(mark)))
			return resolver.StatusFail, nil, nil
		}
		// no frame: the parent's own rules produce the device traffic
		return resolver.StatusAlreadyExists, nil, nil
	}
}
