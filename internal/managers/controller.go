package managers

import (
	"context"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/homas01123/trios/internal/controllers/restserver"
	"github.com/homas01123/trios/internal/saber"
	"github.com/homas01123/trios/pkg/config"
)

// Controller is the interface all controllers implement
type Controller interface {
	StartController() error
}

// ControllerManager holds the active controllers
type ControllerManager struct {
	Controllers []Controller
	logger      *zap.SugaredLogger
}

// NewControllerManager creates controllers for every configured backend
func NewControllerManager(ctx context.Context, wg *sync.WaitGroup, configProvider config.ConfigProvider, backend saber.Backend, logger *zap.SugaredLogger) (*ControllerManager, error) {
	controllers, err := configProvider.GetControllers()
	if err != nil {
		return nil, fmt.Errorf("could not load controller config: %w", err)
	}

	m := &ControllerManager{logger: logger}

	for _, controllerConfig := range controllers {
		switch controllerConfig.Type {
		case "rest":
			if controllerConfig.RESTServer == nil {
				return nil, fmt.Errorf("rest controller configured without a rest section")
			}
			ctrl, err := restserver.NewController(ctx, wg, configProvider, *controllerConfig.RESTServer, backend, logger)
			if err != nil {
				return nil, fmt.Errorf("could not create REST controller: %w", err)
			}
			m.Controllers = append(m.Controllers, ctrl)
		default:
			return nil, fmt.Errorf("unknown controller type %q", controllerConfig.Type)
		}
	}

	return m, nil
}

// StartControllers starts all configured controllers
func (m *ControllerManager) StartControllers() error {
	for _, ctrl := range m.Controllers {
		if err := ctrl.StartController(); err != nil {
			return err
		}
	}
	return nil
}
