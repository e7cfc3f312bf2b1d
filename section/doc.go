// Package section defines the in-memory model of the header sections of a UM
// fields-file family file and their byte-level representation.
//
// # File Structure
//
// Every word is 8 bytes and big-endian. Offsets stored in the fixed header
// are 1-based word numbers.
//
//	┌─────────────────────────────────────────────────────────┐
//	│ Fixed length header (256 words)                         │
//	│  - dataset description slots                            │
//	│  - start/length slots of every other section            │
//	├─────────────────────────────────────────────────────────┤
//	│ Header components (1-D vectors, 2-D matrices)           │
//	│  - integer_constants, real_constants                    │
//	│  - level/row/column dependent constants, ...            │
//	├─────────────────────────────────────────────────────────┤
//	│ Lookup table (N × 64 words)                             │
//	│  - 45 integer words, 19 real words per field            │
//	├─────────────────────────────────────────────────────────┤
//	│ Padding to the data start alignment                     │
//	├─────────────────────────────────────────────────────────┤
//	│ Field data blocks, each padded to a 512 word sector     │
//	└─────────────────────────────────────────────────────────┘
//
// # Components
//
// A component is a typed wrapper over a raw sequence of words. Named
// attributes resolve through a Schema, a static table from name to 1-based
// position (word for vectors, column for matrices). Unset values hold the
// missing data indicator (MDI) of their element type.
//
// Components are owned by exactly one wrapper at a time. Recast hands the
// backing storage to a new wrapper with a different schema and releases the
// old one; any later use of the released wrapper fails with ErrReleased.
//
// 2-D components are held in column-major order, the same order they have
// on disk, so Column returns a contiguous view of one attribute.
//
// # Thread Safety
//
// Components, headers and lookups are not safe for concurrent mutation.
package section
