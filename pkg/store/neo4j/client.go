package neo4j

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/OFFIS-RIT/lexgraph/backend/internal/util"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
)

type Client struct {
	Driver   neo4j.DriverWithContext
	Database string
}

// NewFromEnv connects using NEO4J_URI, NEO4J_USER, NEO4J_PASSWORD,
// NEO4J_DATABASE, NEO4J_TIMEOUT_SECONDS and NEO4J_MAX_POOL_SIZE. It returns
// (nil, nil) when NEO4J_URI is not set.
func NewFromEnv(ctx context.Context) (*Client, error) {
	uri := strings.TrimSpace(util.GetEnv("NEO4J_URI"))
	if uri == "" {
		return nil, nil
	}

	user := util.GetEnvString("NEO4J_USER", "neo4j")
	password := util.GetEnv("NEO4J_PASSWORD")
	database := util.GetEnv("NEO4J_DATABASE")
	timeout := time.Duration(util.GetEnvInt("NEO4J_TIMEOUT_SECONDS", 10)) * time.Second
	maxPool := util.GetEnvInt("NEO4J_MAX_POOL_SIZE", 50)

	auth := neo4j.BasicAuth(user, password, "")
	driver, err := neo4j.NewDriverWithContext(uri, auth, func(cfg *neo4j.Config) {
		cfg.MaxConnectionPoolSize = maxPool
		cfg.SocketConnectTimeout = timeout
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create neo4j driver: %w", err)
	}

	verifyCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	err = util.RetryErrWithContext(verifyCtx, 3, time.Second, driver.VerifyConnectivity)
	if err != nil {
		_ = driver.Close(context.Background())
		return nil, fmt.Errorf("failed to verify neo4j connectivity: %w", err)
	}

	return &Client{
		Driver:   driver,
		Database: database,
	}, nil
}

func (c *Client) Close(ctx context.Context) error {
	if c == nil || c.Driver == nil {
		return nil
	}
	err := c.Driver.Close(ctx)
	c.Driver = nil
	return err
}
