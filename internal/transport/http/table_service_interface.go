package http

import (
	"context"

	"agrocaged/internal/operations"
	"agrocaged/internal/services"
)

// TableServiceInterface is the read side of the output set the handlers depend on
type TableServiceInterface interface {
	Manifest(ctx context.Context) (*operations.RunManifest, error)
	ListTables(ctx context.Context) (*services.TableList, error)
	Table(ctx context.Context, name string) ([]byte, error)
	Bundle(ctx context.Context) ([]byte, error)
	Cube(ctx context.Context, f services.CubeFilter) (services.CubePage[services.CubeRow], error)
	Dimension(ctx context.Context, dim string, f services.CubeFilter) (services.CubePage[services.CubeRow], error)
	CSVPath(name string) (string, error)
	WorkbookPath() (string, error)
}
