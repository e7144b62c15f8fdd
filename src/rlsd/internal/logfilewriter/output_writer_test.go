package logfilewriter

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/uber/rust-lsp/src/rlsd/internal/fs/fsmock"
	"github.com/uber/rust-lsp/src/rlsd/internal/serverinfofile/serverinfofilemock"
	"go.uber.org/fx/fxtest"
	"go.uber.org/mock/gomock"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func TestOpen(t *testing.T) {
	ctrl := gomock.NewController(t)
	serverInfoFileMock := serverinfofilemock.NewMockServerInfoFile(ctrl)
	fsMock := fsmock.NewMockRlsdFS(ctrl)

	t.Run("success", func(t *testing.T) {
		lc := fxtest.NewLifecycle(t)
		p := Params{Lifecycle: lc, ServerInfoFile: serverInfoFileMock, FS: fsMock}

		file, err := os.CreateTemp(t.TempDir(), "")
		require.NoError(t, err)
		fsMock.EXPECT().MkdirAll(gomock.Any()).Return(nil)
		fsMock.EXPECT().TempFile(gomock.Any(), "rls-*.log").Return(file, nil)
		serverInfoFileMock.EXPECT().UpdateField(fmt.Sprintf(_fmtOutputKey, "rls"), file.Name()).Return(nil)

		writer, err := Open(p, "rls")
		require.NoError(t, err)
		_, err = writer.Prefixed("project").Write([]byte("sample log message\n"))
		require.NoError(t, err)

		lc.RequireStart()
		fsMock.EXPECT().Remove(file.Name()).Return(nil)
		lc.RequireStop()

		contents, err := os.ReadFile(file.Name())
		require.NoError(t, err)
		assert.Contains(t, string(contents), "project")
		assert.Contains(t, string(contents), "sample log message")
	})

	t.Run("mkdir fail", func(t *testing.T) {
		p := Params{Lifecycle: fxtest.NewLifecycle(t), ServerInfoFile: serverInfoFileMock, FS: fsMock}
		fsMock.EXPECT().MkdirAll(gomock.Any()).Return(errors.New("sample"))
		_, err := Open(p, "rls")
		assert.Error(t, err)
	})

	t.Run("tempfile fail", func(t *testing.T) {
		p := Params{Lifecycle: fxtest.NewLifecycle(t), ServerInfoFile: serverInfoFileMock, FS: fsMock}
		fsMock.EXPECT().MkdirAll(gomock.Any()).Return(nil)
		fsMock.EXPECT().TempFile(gomock.Any(), gomock.Any()).Return(nil, errors.New("sample"))
		_, err := Open(p, "rls")
		assert.Error(t, err)
	})

	t.Run("info file fail", func(t *testing.T) {
		p := Params{Lifecycle: fxtest.NewLifecycle(t), ServerInfoFile: serverInfoFileMock, FS: fsMock}
		file, err := os.CreateTemp(t.TempDir(), "")
		require.NoError(t, err)
		fsMock.EXPECT().MkdirAll(gomock.Any()).Return(nil)
		fsMock.EXPECT().TempFile(gomock.Any(), gomock.Any()).Return(file, nil)
		serverInfoFileMock.EXPECT().UpdateField(gomock.Any(), file.Name()).Return(errors.New("sample"))
		fsMock.EXPECT().Remove(file.Name()).Return(nil)

		_, err = Open(p, "rls")
		assert.Error(t, err)
	})
}

func TestWrite(t *testing.T) {
	var buf bytes.Buffer
	core := zapcore.NewCore(
		zapcore.NewConsoleEncoder(zap.NewDevelopmentEncoderConfig()),
		zapcore.AddSync(&buf),
		zap.InfoLevel,
	)
	w := &Writer{logger: zap.New(core).Sugar()}

	n, err := w.Write([]byte("first line\r\nsecond line\n\n"))
	require.NoError(t, err)
	assert.Equal(t, len("first line\r\nsecond line\n\n"), n)
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 2)
	assert.True(t, strings.HasSuffix(lines[0], "first line"))
	assert.True(t, strings.HasSuffix(lines[1], "second line"))
}
