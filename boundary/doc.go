// Package boundary connects a caller-owned handle to an external decoder.
//
// The adapter never hands a Go pointer across the boundary. It pins the
// handle's write capability in a resource table and passes the resulting
// 32-bit address instead. The decoder resolves the address through the
// Registry it receives, writes the four slots, and returns. The pin is
// released as soon as the decoder returns, on every exit path, so an
// address the decoder kept can no longer be resolved.
//
// # Population
//
//	adapter := boundary.New(decoder, nil)
//	h := handle.New()
//	if err := adapter.Populate(ctx, h, "book.xlsx", "Sheet1", true); err != nil {
//	    // h is Poisoned (or untouched, for AlreadyPopulated)
//	}
//
// Populate performs exactly one decode per handle, blocks until the
// decoder returns, and validates the written data before making the
// handle readable. There is no retry and no timeout: file and sheet
// errors are not transient, and a decoder that hangs blocks the caller.
//
// # Errors
//
// Decoder failures are mapped onto the fastsheet error taxonomy:
//
//	*errors.Error from the decoder   passed through
//	fs.ErrNotExist in the chain      FileNotFound
//	panic or anything else           DecodeError
//	inconsistent slots after return  CorruptPopulation (fatal)
//
// The adapter does not check that the file exists before decoding; that
// decision belongs to the decoder.
package boundary
