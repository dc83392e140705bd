package shared

const (
	OwnerReadWrite     = 0o600
	OwnerReadWriteExec = 0o700
)
