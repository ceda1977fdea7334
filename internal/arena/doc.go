// Package arena provides owned byte buffers for row-group assembly.
//
// Buffer is a fixed-capacity region with a write cursor. The assembler
// sizes it exactly during Measure and fills it during Combine, so a fully
// written Buffer has zero bytes available.
//
// Concat and Partition build and split the external toast arena: columns
// are laid out back to back in column order with no gaps.
package arena
