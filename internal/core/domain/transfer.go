package domain

// TransferMessage is an internal message the wallet attaches to its next
// external message. Payload is the BOC-serialized operation body.
type TransferMessage struct {
	Destination   string
	AttachedValue uint64
	Payload       []byte
	Bounce        bool
}

type WalletHandle struct {
	Address   string
	PublicKey []byte
	// SecretKey is kept in memory only.
	SecretKey []byte `json:"-"`
}
