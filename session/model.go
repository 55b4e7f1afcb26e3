package session

// Record is the subject's currently-canonical session. Exactly one Record
// exists per subject; recording a new one overwrites the prior record, which
// makes the old token non-current even though its signature stays valid until
// expiry.
type Record struct {
	Subject   string
	Nonce     string
	Token     string
	CreatedAt int64
}
