// Package media 媒体文件识别：按二进制签名嗅探类型，再用 ffprobe 读取流信息
package media

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os/exec"
	"strings"

	"github.com/gabriel-vasile/mimetype"
)

// Kind 文件分类结果
type Kind int

const (
	KindNone Kind = iota // 非媒体文件
	KindAudio
	KindVideo
)

func (k Kind) String() string {
	switch k {
	case KindAudio:
		return "audio"
	case KindVideo:
		return "video"
	default:
		return "none"
	}
}

// Stream ffprobe 输出中的一条流
type Stream struct {
	Index     int    `json:"index"`
	CodecName string `json:"codec_name"`
	CodecType string `json:"codec_type"`
}

// Runner 执行外部命令并返回 stdout，测试中替换为假实现
type Runner func(ctx context.Context, name string, args ...string) ([]byte, error)

// execRunner 默认实现，失败时带上 stderr
func execRunner(ctx context.Context, name string, args ...string) ([]byte, error) {
	cmd := exec.CommandContext(ctx, name, args...)
	var out bytes.Buffer
	var stderr bytes.Buffer
	cmd.Stdout = &out
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return nil, fmt.Errorf("%s failed: %w: %s", name, err, strings.TrimSpace(stderr.String()))
	}
	return out.Bytes(), nil
}

// Prober 媒体探测器
type Prober struct {
	ffprobePath string
	run         Runner
}

// NewProber 使用系统 ffprobe
func NewProber(ffprobePath string) *Prober {
	return NewProberWithRunner(ffprobePath, execRunner)
}

// NewProberWithRunner 指定命令执行方式
func NewProberWithRunner(ffprobePath string, run Runner) *Prober {
	if ffprobePath == "" {
		ffprobePath = "ffprobe"
	}
	return &Prober{ffprobePath: ffprobePath, run: run}
}

// Sniff 按文件内容识别 MIME 类型（不看扩展名）
func Sniff(file string) (string, error) {
	mtype, err := mimetype.DetectFile(file)
	if err != nil {
		return "", fmt.Errorf("detect mime type of %s: %w", file, err)
	}
	return mtype.String(), nil
}

// isAudioOrVideo 只对 audio/* 与 video/* 做进一步探测
func isAudioOrVideo(mime string) bool {
	return strings.HasPrefix(mime, "audio/") || strings.HasPrefix(mime, "video/")
}

// Streams 读取文件的全部流
func (p *Prober) Streams(ctx context.Context, file string) ([]Stream, error) {
	args := []string{
		"-v", "error",
		"-show_entries", "stream=index,codec_name,codec_type",
		"-of", "json",
		file,
	}

	out, err := p.run(ctx, p.ffprobePath, args...)
	if err != nil {
		return nil, fmt.Errorf("ffprobe execution failed for %s: %w", file, err)
	}

	var probeData struct {
		Streams []Stream `json:"streams"`
	}
	if err := json.Unmarshal(out, &probeData); err != nil {
		return nil, fmt.Errorf("failed to unmarshal ffprobe output: %w", err)
	}
	return probeData.Streams, nil
}

// Classify 嗅探并探测单个文件。
// 含视频流为 KindVideo，其余可探测的音视频文件为 KindAudio，非媒体为 KindNone。
func (p *Prober) Classify(ctx context.Context, file string) (Kind, error) {
	mime, err := Sniff(file)
	if err != nil {
		return KindNone, err
	}
	if !isAudioOrVideo(mime) {
		return KindNone, nil
	}

	streams, err := p.Streams(ctx, file)
	if err != nil {
		return KindNone, err
	}
	for _, s := range streams {
		if s.CodecType == "video" {
			return KindVideo, nil
		}
	}
	return KindAudio, nil
}
