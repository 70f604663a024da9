package label

import (
	"context"
	"fmt"
	"net"
	"os"
	"path/filepath"
	"time"

	"go.uber.org/zap"
)

const fileTimeLayout = "20060102_150405"

// Outcome reports where a label went.
type Outcome struct {
	Printed bool   `json:"printed"`
	File    string `json:"file,omitempty"`
}

// Printer sends raw ZPL to a TCP printer (port 9100 style) and writes the
// label to Dir when the printer cannot be reached.
type Printer struct {
	addr    string
	timeout time.Duration
	dir     string
	logger  *zap.Logger
	now     func() time.Time
}

func NewPrinter(addr string, timeout time.Duration, dir string, logger *zap.Logger) *Printer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Printer{
		addr:    addr,
		timeout: timeout,
		dir:     dir,
		logger:  logger,
		now:     time.Now,
	}
}

// Send writes content to the printer in a single connection.
func (p *Printer) Send(ctx context.Context, content string) error {
	if p.addr == "" {
		return fmt.Errorf("printer address not configured")
	}

	dialer := net.Dialer{Timeout: p.timeout}
	conn, err := dialer.DialContext(ctx, "tcp", p.addr)
	if err != nil {
		return fmt.Errorf("dial printer %s: %w", p.addr, err)
	}
	defer conn.Close()

	if p.timeout > 0 {
		if err := conn.SetWriteDeadline(time.Now().Add(p.timeout)); err != nil {
			return fmt.Errorf("set printer deadline: %w", err)
		}
	}

	if _, err := conn.Write([]byte(content)); err != nil {
		return fmt.Errorf("write to printer %s: %w", p.addr, err)
	}
	return nil
}

// Save writes content to Dir/name and returns the full path.
func (p *Printer) Save(name, content string) (string, error) {
	if err := os.MkdirAll(p.dir, 0o755); err != nil {
		return "", fmt.Errorf("create label dir: %w", err)
	}

	path := filepath.Join(p.dir, name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		return "", fmt.Errorf("write label file: %w", err)
	}
	return path, nil
}

// PrintOrSave tries the printer first and falls back to a file named
// <prefix>_<id>_<yyyyMMdd_HHmmss>.zpl. It fails only when both fail.
func (p *Printer) PrintOrSave(ctx context.Context, prefix string, id int64, content string) (Outcome, error) {
	sendErr := p.Send(ctx, content)
	if sendErr == nil {
		p.logger.Info("label printed", zap.String("kind", prefix), zap.Int64("id", id), zap.String("printer", p.addr))
		return Outcome{Printed: true}, nil
	}

	p.logger.Warn("printer unavailable, saving label to file",
		zap.String("kind", prefix),
		zap.Int64("id", id),
		zap.Error(sendErr),
	)

	path, err := p.Save(FileName(prefix, id, p.now()), content)
	if err != nil {
		return Outcome{}, fmt.Errorf("print label: %v; fallback: %w", sendErr, err)
	}
	return Outcome{File: path}, nil
}

// FileName builds the fallback label file name.
func FileName(prefix string, id int64, at time.Time) string {
	return fmt.Sprintf("%s_%d_%s.zpl", prefix, id, at.Format(fileTimeLayout))
}
