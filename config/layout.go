package config

// Layout is the placement of a payload over the member drives of an array.
type Layout struct {
	NumStripes     uint64
	StripeDataSize uint64
	// DriveSize is the number of bytes every member drive holds.
	DriveSize uint64
	// Padding is the number of zero bytes appended to the last stripe.
	Padding uint64
}

// TotalSize returns the number of bytes written to all drives together.
func (l Layout) TotalSize(members int) uint64 {
	return l.DriveSize * uint64(members)
}

// DeriveLayout returns the layout of a payload of payloadSize bytes. Every
// stripe carries cfg.StripeDataSize() payload bytes; the last one is zero
// padded.
func DeriveLayout(cfg Config, payloadSize uint64) Layout {
	stripeDataSize := cfg.StripeDataSize()
	numStripes := payloadSize / stripeDataSize

	var padding uint64
	if remainder := payloadSize % stripeDataSize; remainder > 0 {
		numStripes++
		padding = stripeDataSize - remainder
	}

	return Layout{
		NumStripes:     numStripes,
		StripeDataSize: stripeDataSize,
		DriveSize:      numStripes * uint64(cfg.ChunkSize),
		Padding:        padding,
	}
}

