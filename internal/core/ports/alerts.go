package ports

import "context"

const (
	MintAccepted      Topic = "Mint Accepted"
	MintRejected      Topic = "Mint Rejected"
	TransferSubmitted Topic = "Transfer Submitted"
)

type Topic string

type Alerts interface {
	Publish(ctx context.Context, topic Topic, message interface{}) error
}

type MintAlert struct {
	RequestId    string
	Name         string
	OwnerAddress string
	MetadataUri  string
	StatusCode   int
}

type TransferAlert struct {
	Kind        string
	FromWallet  string
	Destination string
	Seqno       uint32
	// Amount is a decimal in whole units of the transferred asset.
	Amount string
	// Fee is the attached TON value in nano.
	Fee uint64
}
