package minio

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"testing"
	"time"

	mclient "github.com/minio/minio-go/v7"
	"github.com/stretchr/testify/require"
	tc "github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/pribylovaa/go-microblog/internal/config"
)

// Интеграционные тесты для пакета minio: поднимают MinIO через testcontainers-go,
// проверяют создание бакета, загрузку объекта, ссылку и удаление.
//
// Запуск:
//   GO_TEST_INTEGRATION=1 go test ./internal/storage/minio -v -race -count=1

func startMinio(t *testing.T) config.S3Config {
	t.Helper()
	if os.Getenv("GO_TEST_INTEGRATION") == "" {
		t.Skip("integration tests are disabled (set GO_TEST_INTEGRATION=1)")
	}

	ctx := context.Background()
	req := tc.ContainerRequest{
		Image: "docker.io/minio/minio:latest",
		Env: map[string]string{
			"MINIO_ROOT_USER":     "root",
			"MINIO_ROOT_PASSWORD": "rootpass",
		},
		Cmd:          []string{"server", "/data"},
		ExposedPorts: []string{"9000/tcp"},
		WaitingFor:   wait.ForListeningPort("9000/tcp").WithStartupTimeout(60 * time.Second),
	}
	c, err := tc.GenericContainer(ctx, tc.GenericContainerRequest{ContainerRequest: req, Started: true})
	require.NoError(t, err)
	t.Cleanup(func() { _ = c.Terminate(context.Background()) })

	host, err := c.Host(ctx)
	require.NoError(t, err)
	port, err := c.MappedPort(ctx, "9000/tcp")
	require.NoError(t, err)

	return config.S3Config{
		Endpoint:      fmt.Sprintf("http://%s:%s", host, port.Port()),
		RootUser:      "root",
		RootPassword:  "rootpass",
		Bucket:        "media",
		PublicBaseURL: "http://cdn.local/media/",
	}
}

func TestIntegration_PutAndRemove(t *testing.T) {
	cfg := startMinio(t)
	ctx := context.Background()

	// Бакета ещё нет: New должен его создать.
	st, err := New(ctx, cfg)
	require.NoError(t, err)

	data := []byte("\x89PNG fake")
	link, err := st.PutObject(ctx, "media/u1/a.png", bytes.NewReader(data), int64(len(data)), "image/png")
	require.NoError(t, err)
	require.Equal(t, "http://cdn.local/media/media/u1/a.png", link)

	info, err := st.client.StatObject(ctx, cfg.Bucket, "media/u1/a.png", mclient.StatObjectOptions{})
	require.NoError(t, err)
	require.Equal(t, int64(len(data)), info.Size)
	require.Equal(t, "image/png", info.ContentType)

	require.NoError(t, st.RemoveObject(ctx, "media/u1/a.png"))

	_, err = st.client.StatObject(ctx, cfg.Bucket, "media/u1/a.png", mclient.StatObjectOptions{})
	require.Error(t, err)

	// Повторный New на существующем бакете.
	_, err = New(ctx, cfg)
	require.NoError(t, err)
}
