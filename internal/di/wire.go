//go:build wireinject
// +build wireinject

package di

import (
	"github.com/google/wire"

	"github.com/tricol/supplierchain/internal/app"
	"github.com/tricol/supplierchain/internal/security"
	"github.com/tricol/supplierchain/internal/seeder"
)

func InitializeApp() (*app.App, error) {
	panic(wire.Build(
		ConfigSet,
		ObservabilitySet,
		RuntimeInfraSet,
		RepositorySet,
		SecuritySet,
		ServiceSet,
		HTTPSet,
		AppSet,
	))
}

func InitializeSeeder() (*SeedRunner, error) {
	panic(wire.Build(
		ConfigSet,
		ObservabilitySet,
		provideRuntimeDB,
		RepositorySet,
		security.NewPasswordHasher,
		seeder.New,
		NewSeedRunner,
	))
}
