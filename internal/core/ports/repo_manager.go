package ports

import "github.com/beastmint/mintd/internal/core/domain"

type RepoManager interface {
	MintRecords() domain.MintRecordRepo
	Close()
}
