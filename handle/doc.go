// Package handle implements the record a decoder populates and the
// lifecycle that guards it.
//
// # Lifecycle
//
//	Empty ──Begin──▶ Populating ──Seal──▶ Populated
//	                      │
//	                      └──Poison / failed Seal──▶ Poisoned
//
// Populated and Poisoned are terminal. Begin succeeds exactly once per
// handle; every later or concurrent attempt fails with AlreadyPopulated.
// Reads succeed only in Populated and fail with UnpopulatedHandle in every
// other state.
//
// # Slots
//
// Begin returns a Slots value, the only way to write into the handle.
// It exposes four slots: width, height, rows (built with BeginRow/Push or
// AppendRow) and, through Seal, the header. Slots stop accepting writes
// when the population call ends, so a decoder that keeps the value around
// cannot change populated data.
//
// # Consistency
//
// Seal checks that both counts were written, that the number of rows
// equals the height and that every row has exactly width cells. Any
// mismatch poisons the handle with CorruptPopulation.
//
// # Concurrency
//
// Population is not reentrant. After Seal the data is never written again
// and may be read from any number of goroutines without locking.
package handle
