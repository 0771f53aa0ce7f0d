package media

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

// id3Header 足以被识别为 audio/mpeg 的最小文件头
var id3Header = append([]byte("ID3\x03\x00\x00\x00\x00\x00\x00"), make([]byte, 64)...)

func writeFile(t *testing.T, dir, name string, data []byte) string {
	t.Helper()
	p := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(p, data, 0o644))
	return p
}

func fakeRunner(out string, err error, calls *int) Runner {
	return func(_ context.Context, name string, args ...string) ([]byte, error) {
		if calls != nil {
			*calls++
		}
		if err != nil {
			return nil, err
		}
		return []byte(out), nil
	}
}

func TestSniffIgnoresExtension(t *testing.T) {
	dir := t.TempDir()

	mime, err := Sniff(writeFile(t, dir, "song.txt", id3Header))
	require.NoError(t, err)
	require.Equal(t, "audio/mpeg", mime)

	mime, err = Sniff(writeFile(t, dir, "notes.mp3", []byte("just some notes\n")))
	require.NoError(t, err)
	require.Contains(t, mime, "text/plain")

	_, err = Sniff(filepath.Join(dir, "missing"))
	require.Error(t, err)
}

func TestClassify(t *testing.T) {
	dir := t.TempDir()
	audioFile := writeFile(t, dir, "a.bin", id3Header)
	textFile := writeFile(t, dir, "readme.mp4", []byte("hello world\n"))

	tests := []struct {
		name      string
		file      string
		out       string
		runErr    error
		want      Kind
		wantErr   bool
		wantCalls int
	}{
		{
			name:      "audio stream only",
			file:      audioFile,
			out:       `{"streams":[{"index":0,"codec_name":"mp3","codec_type":"audio"}]}`,
			want:      KindAudio,
			wantCalls: 1,
		},
		{
			name:      "any video stream wins",
			file:      audioFile,
			out:       `{"streams":[{"index":0,"codec_type":"audio"},{"index":1,"codec_name":"h264","codec_type":"video"}]}`,
			want:      KindVideo,
			wantCalls: 1,
		},
		{
			name:      "no streams is audio",
			file:      audioFile,
			out:       `{"streams":[]}`,
			want:      KindAudio,
			wantCalls: 1,
		},
		{
			name:      "non media is not probed",
			file:      textFile,
			want:      KindNone,
			wantCalls: 0,
		},
		{
			name:      "probe failure",
			file:      audioFile,
			runErr:    errors.New("exit status 1"),
			want:      KindNone,
			wantErr:   true,
			wantCalls: 1,
		},
		{
			name:      "garbage output",
			file:      audioFile,
			out:       `not json`,
			want:      KindNone,
			wantErr:   true,
			wantCalls: 1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			calls := 0
			p := NewProberWithRunner("", fakeRunner(tt.out, tt.runErr, &calls))
			got, err := p.Classify(context.Background(), tt.file)
			if tt.wantErr {
				require.Error(t, err)
			} else {
				require.NoError(t, err)
			}
			require.Equal(t, tt.want, got)
			require.Equal(t, tt.wantCalls, calls)
		})
	}
}

func TestStreamsPassesFileToFFprobe(t *testing.T) {
	var gotName string
	var gotArgs []string
	p := NewProberWithRunner("/opt/ffprobe", func(_ context.Context, name string, args ...string) ([]byte, error) {
		gotName, gotArgs = name, args
		return []byte(`{"streams":[{"index":0,"codec_type":"audio"}]}`), nil
	})

	streams, err := p.Streams(context.Background(), "/data/x.mp3")
	require.NoError(t, err)
	require.Len(t, streams, 1)
	require.Equal(t, "/opt/ffprobe", gotName)
	require.Equal(t, "/data/x.mp3", gotArgs[len(gotArgs)-1])
	require.Contains(t, gotArgs, "json")
}

func TestKindString(t *testing.T) {
	require.Equal(t, "audio", KindAudio.String())
	require.Equal(t, "video", KindVideo.String())
	require.Equal(t, "none", KindNone.String())
}
