package geoprefix

import (
	"errors"
	"fmt"

	"github.com/hupe1980/geoprefix/blobstore"
	"github.com/hupe1980/geoprefix/shape"
	"github.com/hupe1980/geoprefix/strategy"
	"github.com/hupe1980/geoprefix/termindex"
	"github.com/hupe1980/geoprefix/tree"
)

var (
	// ErrNotFound is returned when a document or snapshot does not exist.
	ErrNotFound = errors.New("not found")

	// ErrClosed is returned by operations on a closed Index.
	ErrClosed = errors.New("index closed")

	// ErrInvalidConfig is returned for invalid tree, strategy or snapshot settings.
	ErrInvalidConfig = errors.New("invalid configuration")

	// ErrInvalidShape is returned for malformed shapes and shapes outside the world bounds.
	ErrInvalidShape = errors.New("invalid shape")

	// ErrCorruptSnapshot is returned when a snapshot fails to decode or verify.
	ErrCorruptSnapshot = errors.New("corrupt snapshot")

	// ErrUnsupportedRelation is returned for relations the index cannot answer.
	ErrUnsupportedRelation = strategy.ErrUnsupportedRelation

	// ErrEmptyID is returned when a document id is empty.
	ErrEmptyID = termindex.ErrEmptyID
)

// ShapeError reports a document whose shape could not be indexed.
//
// The original underlying error can be accessed via errors.Unwrap.
type ShapeError struct {
	ID    string
	cause error
}

func (e *ShapeError) Error() string {
	return fmt.Sprintf("document %q: %v", e.ID, e.cause)
}

func (e *ShapeError) Unwrap() error { return e.cause }

// SettingsMismatchError is returned when a snapshot was written with settings that differ
// from the ones requested on load.
type SettingsMismatchError struct {
	Snapshot  Settings
	Requested Settings
}

func (e *SettingsMismatchError) Error() string {
	return fmt.Sprintf("settings mismatch: snapshot %s, requested %s", e.Snapshot, e.Requested)
}

func (e *SettingsMismatchError) Unwrap() error { return ErrInvalidConfig }

func translateError(err error) error {
	if err == nil {
		return nil
	}

	// Not found unification.
	if errors.Is(err, blobstore.ErrNotFound) && !errors.Is(err, ErrNotFound) {
		return fmt.Errorf("%w: %w", ErrNotFound, err)
	}

	// Configuration.
	for _, target := range []error{
		tree.ErrInvalidMaxLevels,
		tree.ErrInvalidBounds,
		tree.ErrInvalidLevel,
		tree.ErrInvalidPrecision,
		tree.ErrUnknownKind,
		strategy.ErrInvalidField,
		strategy.ErrNilTree,
		termindex.ErrUnknownCompression,
	} {
		if errors.Is(err, target) && !errors.Is(err, ErrInvalidConfig) {
			return fmt.Errorf("%w: %w", ErrInvalidConfig, err)
		}
	}

	// Shapes.
	for _, target := range []error{
		shape.ErrInvalidCoordinate,
		shape.ErrInvalidRectangle,
		shape.ErrInvalidPolygon,
		shape.ErrUnsupportedGeometry,
		tree.ErrOutOfBounds,
	} {
		if errors.Is(err, target) && !errors.Is(err, ErrInvalidShape) {
			return fmt.Errorf("%w: %w", ErrInvalidShape, err)
		}
	}

	// Snapshots.
	for _, target := range []error{
		termindex.ErrCorrupt,
		termindex.ErrInvalidMagic,
		termindex.ErrUnsupportedVersion,
	} {
		if errors.Is(err, target) && !errors.Is(err, ErrCorruptSnapshot) {
			return fmt.Errorf("%w: %w", ErrCorruptSnapshot, err)
		}
	}

	return err
}
