package usecase

import (
	"github.com/secmon-lab/repogov/pkg/domain/interfaces"
	"github.com/secmon-lab/repogov/pkg/domain/model"
	"github.com/secmon-lab/repogov/pkg/infra"
)

type UseCase struct {
	clients  *infra.Clients
	registry model.OwnerRegistry
}

var _ interfaces.UseCase = (*UseCase)(nil)

func New(clients *infra.Clients, registry model.OwnerRegistry) *UseCase {
	return &UseCase{
		clients:  clients,
		registry: registry,
	}
}
