package devcli

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/birdiecloud/birdie-gateway-go/birdie"
	"github.com/birdiecloud/birdie-gateway-go/internal/logging"
)

// NewClient constructs a gateway client using global flags. The returned
// logger should be synced by the caller.
func NewClient(g GlobalFlags) (*birdie.Client, *zap.Logger, error) {
	logger, err := logging.New(g.LogLevel)
	if err != nil {
		return nil, nil, err
	}
	creds := birdie.Credentials{
		Username:  g.Username,
		Password:  g.Password,
		ProjectID: g.ProjectID,
		TenantID:  g.TenantID,
	}
	ep := birdie.Endpoint{Scheme: g.Scheme, Host: g.Host, Port: g.Port}
	cl, err := birdie.Connect(g.APIVersion, creds, ep,
		birdie.WithInsecure(g.Insecure),
		birdie.WithCACert(g.CACert),
		birdie.WithTimeout(g.Timeout),
		birdie.WithRetries(g.Retries),
		birdie.WithBackoffUnit(g.Backoff),
		birdie.WithDebug(g.Verbose),
		birdie.WithLogger(logger),
	)
	if err != nil {
		_ = logger.Sync()
		return nil, nil, err
	}
	return cl, logger, nil
}

// Ctx returns a context for one command. The deadline allows one timeout
// per attempt plus every backoff wait; a zero timeout means no deadline.
func Ctx(g GlobalFlags) (context.Context, context.CancelFunc) {
	if g.Timeout <= 0 {
		return context.WithCancel(context.Background())
	}
	return context.WithTimeout(context.Background(), commandDeadline(g))
}

// maxBackoffDoublings caps the backoff sum so large retry counts cannot overflow.
const maxBackoffDoublings = 30

func commandDeadline(g GlobalFlags) time.Duration {
	retries := g.Retries
	if retries < 0 {
		retries = 0
	}
	unit := g.Backoff
	if unit <= 0 {
		unit = birdie.DefaultBackoffUnit
	}
	doublings := retries
	if doublings > maxBackoffDoublings {
		doublings = maxBackoffDoublings
	}
	// unit * (1 + 2 + ... + 2^(retries-1))
	backoff := unit * time.Duration((1<<doublings)-1)
	return g.Timeout*time.Duration(retries+1) + backoff
}
