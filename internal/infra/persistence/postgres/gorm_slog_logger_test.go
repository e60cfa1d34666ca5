package postgres

import (
	"bytes"
	"context"
	"database/sql"
	"log/slog"
	"testing"
	"time"

	"sentinel/config"
	deliverycontext "sentinel/internal/delivery/context"
	"sentinel/internal/errors"

	"github.com/stretchr/testify/assert"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newCapturingLogger() (*slog.Logger, *bytes.Buffer) {
	var buf bytes.Buffer

	return slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug})), &buf
}

func sqlFn(sql string) func() (string, int64) {
	return func() (string, int64) { return sql, 1 }
}

func TestGormSlogLogger_ParamsFilterDropsValues(t *testing.T) {
	base, _ := newCapturingLogger()
	l := newGormSlogLogger(base, nil).(*gormSlogLogger)

	sql, params := l.ParamsFilter(context.Background(), "UPDATE users SET password_hash = $1", "$2a$12$secret")

	assert.Equal(t, "UPDATE users SET password_hash = $1", sql)
	assert.Nil(t, params)
}

func TestGormSlogLogger_TraceUsesRequestLogger(t *testing.T) {
	base, baseBuf := newCapturingLogger()
	reqLogger, reqBuf := newCapturingLogger()
	l := newGormSlogLogger(base, nil)

	ctx := deliverycontext.WithLogger(context.Background(), reqLogger.With(slog.String("request_id", "req-1")))
	l.Trace(ctx, time.Now(), sqlFn("SELECT 1"), errors.New("connection reset"))

	assert.Empty(t, baseBuf.String())
	assert.Contains(t, reqBuf.String(), "gorm query failed")
	assert.Contains(t, reqBuf.String(), "request_id=req-1")
	assert.Contains(t, reqBuf.String(), "connection reset")
}

func TestGormSlogLogger_Trace(t *testing.T) {
	tests := []struct {
		name    string
		debug   bool
		begin   time.Time
		err     error
		wantLog string
	}{
		{name: "record not found is quiet", begin: time.Now(), err: gorm.ErrRecordNotFound},
		{name: "fast query at warn level is quiet", begin: time.Now()},
		{name: "slow query", begin: time.Now().Add(-time.Second), wantLog: "gorm slow query"},
		{name: "debug logs every query", debug: true, begin: time.Now(), wantLog: "gorm query"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			base, buf := newCapturingLogger()
			cfg := &config.Config{}
			cfg.Env.Debug = tt.debug
			l := newGormSlogLogger(base, cfg)

			l.Trace(context.Background(), tt.begin, sqlFn("SELECT * FROM users"), tt.err)

			if tt.wantLog == "" {
				assert.Empty(t, buf.String())

				return
			}
			assert.Contains(t, buf.String(), tt.wantLog)
		})
	}
}

func TestGormSlogLogger_Silent(t *testing.T) {
	base, buf := newCapturingLogger()
	l := newGormSlogLogger(base, nil).LogMode(logger.Silent)

	l.Trace(context.Background(), time.Now().Add(-time.Second), sqlFn("SELECT 1"), errors.New("boom"))
	l.Error(context.Background(), "boom %d", 1)

	assert.Empty(t, buf.String())
}

func TestLogPoolWait(t *testing.T) {
	base, buf := newCapturingLogger()

	logPoolWait(context.Background(), base, sql.DBStats{WaitCount: 3}, sql.DBStats{WaitCount: 3})
	assert.Empty(t, buf.String())

	logPoolWait(context.Background(), base,
		sql.DBStats{WaitCount: 1, WaitDuration: time.Millisecond},
		sql.DBStats{WaitCount: 3, WaitDuration: 201 * time.Millisecond, InUse: 10, MaxOpenConnections: 10},
	)
	assert.Contains(t, buf.String(), "level=WARN")
	assert.Contains(t, buf.String(), "waits=2")
	assert.Contains(t, buf.String(), "avg_wait=100ms")
}
