package umfile

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/arloliu/mule/errs"
	"github.com/arloliu/mule/internal/logger"
	"github.com/arloliu/mule/internal/options"
	"github.com/arloliu/mule/layout"
	"github.com/arloliu/mule/section"
	"github.com/arloliu/mule/stash"
)

// FileConfig holds the options used when a File is opened or created.
type FileConfig struct {
	log    logger.Logger
	layout *layout.Layout
}

// FileOption configures how a File is opened or created.
type FileOption = options.Option[*FileConfig]

func newFileConfig(opts ...FileOption) (*FileConfig, error) {
	cfg := &FileConfig{log: logger.Discard()}
	if err := options.Apply(cfg, opts...); err != nil {
		return nil, err
	}

	return cfg, nil
}

// WithLogger sets the logger. A nil logger discards everything, which is
// also the default.
func WithLogger(l *slog.Logger) FileOption {
	return options.NoError(func(c *FileConfig) {
		c.log = logger.FromSlog(l)
	})
}

// ContextWithLogger returns a copy of ctx carrying l. Prefetch logs to it,
// and WithContextLogger turns it into a FileOption.
func ContextWithLogger(ctx context.Context, l *slog.Logger) context.Context {
	return logger.WithContext(ctx, logger.FromSlog(l))
}

// WithContextLogger uses the logger carried by ctx, or discards when ctx
// carries none. A later WithLogger takes precedence.
func WithContextLogger(ctx context.Context) FileOption {
	return options.NoError(func(c *FileConfig) {
		c.log = logger.FromContext(ctx)
	})
}

// WithKind forces the layout used to read a file instead of selecting it
// from the dataset_type slot.
func WithKind(kind layout.Kind) FileOption {
	return options.New(func(c *FileConfig) error {
		lay, err := layout.Get(kind)
		if err != nil {
			return fmt.Errorf("with kind: %w", err)
		}
		c.layout = lay

		return nil
	})
}

// Mode selects how many violations Validate gathers.
type Mode uint8

const (
	// Soft collects every violation.
	Soft Mode = iota
	// Hard stops at the first violation and returns it as the error.
	Hard
)

func (m Mode) String() string {
	if m == Hard {
		return "hard"
	}

	return "soft"
}

// ValidateConfig holds the options of one validation run.
type ValidateConfig struct {
	mode    Mode
	catalog *stash.Catalog
}

// ValidateOption configures a validation run.
type ValidateOption = options.Option[*ValidateConfig]

// WithMode sets the validation mode. The default is Soft.
func WithMode(mode Mode) ValidateOption {
	return options.New(func(c *ValidateConfig) error {
		if mode != Soft && mode != Hard {
			return fmt.Errorf("invalid validation mode: %d", mode)
		}
		c.mode = mode

		return nil
	})
}

// WithCatalog enables the catalog consistency check of field grids.
func WithCatalog(catalog *stash.Catalog) ValidateOption {
	return options.NoError(func(c *ValidateConfig) {
		c.catalog = catalog
	})
}

// WriteConfig holds the options of one write.
type WriteConfig struct {
	validate     bool
	validateOpts []ValidateOption
}

// WriteOption configures a write.
type WriteOption = options.Option[*WriteConfig]

func newWriteConfig(opts ...WriteOption) (*WriteConfig, error) {
	cfg := &WriteConfig{validate: true}
	if err := options.Apply(cfg, opts...); err != nil {
		return nil, err
	}

	return cfg, nil
}

// WithoutValidation writes the file without validating it first.
func WithoutValidation() WriteOption {
	return options.NoError(func(c *WriteConfig) {
		c.validate = false
	})
}

// WithValidateOptions passes options to the validation run that precedes a
// write. The mode is always Hard.
func WithValidateOptions(opts ...ValidateOption) WriteOption {
	return options.NoError(func(c *WriteConfig) {
		c.validateOpts = append(c.validateOpts, opts...)
	})
}

// CompareConfig holds the options of one comparison.
type CompareConfig struct {
	headerSlots map[int]bool
	lookupWords map[int]bool
	skipData    bool
}

// CompareOption configures Compare.
type CompareOption = options.Option[*CompareConfig]

// IgnoreHeaderSlots excludes fixed length header slots from the comparison.
func IgnoreHeaderSlots(slots ...int) CompareOption {
	return options.New(func(c *CompareConfig) error {
		for _, s := range slots {
			if s < 1 || s > section.FixedHeaderWords {
				return fmt.Errorf("header slot %d: %w", s, errs.ErrOutOfRange)
			}
			c.headerSlots[s] = true
		}

		return nil
	})
}

// IgnoreLookupWords excludes lookup words from the comparison.
func IgnoreLookupWords(words ...int) CompareOption {
	return options.New(func(c *CompareConfig) error {
		for _, w := range words {
			if w < 1 || w > section.LookupWords {
				return fmt.Errorf("lookup word %d: %w", w, errs.ErrOutOfRange)
			}
			c.lookupWords[w] = true
		}

		return nil
	})
}

// IgnorePositions excludes every slot and word that a write recomputes:
// component and section positions in the header, and lbegin, lblrec and
// lbnrec in the lookups. Files that hold the same content but were packed
// or laid out differently then compare equal apart from their data.
func IgnorePositions() CompareOption {
	return options.NoError(func(c *CompareConfig) {
		for s := section.SlotIntegerConstantsStart; s <= section.SlotDataDim2; s++ {
			if s != section.SlotTotalPrognosticFields {
				c.headerSlots[s] = true
			}
		}
		c.lookupWords[section.LBLRec] = true
		c.lookupWords[section.LBEgin] = true
		c.lookupWords[section.LBNRec] = true
	})
}

// WithoutData skips the comparison of field data.
func WithoutData() CompareOption {
	return options.NoError(func(c *CompareConfig) {
		c.skipData = true
	})
}
