//go:build !ci

package sound

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/gopxl/beep/v2"
	"github.com/gopxl/beep/v2/mp3"
	"github.com/gopxl/beep/v2/speaker"
	"github.com/gopxl/beep/v2/wav"

	"github.com/palemoky/spymaster/internal/logger"
)

const sampleRate = beep.SampleRate(44100)

// Manager 音效管理器，从音效目录加载与 Cue 同名的 mp3/wav 文件
type Manager struct {
	dir     string
	mu      sync.RWMutex
	buffers map[Cue]*beep.Buffer
	enabled bool
}

// NewManager 创建音效管理器，dir 为空时使用 assets/sounds
func NewManager(dir string) *Manager {
	if dir == "" {
		dir = DefaultDir
	}
	return &Manager{
		dir:     dir,
		buffers: make(map[Cue]*beep.Buffer),
	}
}

// Init 初始化扬声器并加载音效，目录不存在时静默无声
func (m *Manager) Init() error {
	if err := speaker.Init(sampleRate, sampleRate.N(time.Second/10)); err != nil {
		return fmt.Errorf("failed to initialize speaker: %w", err)
	}

	files, err := os.ReadDir(m.dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("failed to read sound directory: %w", err)
	}

	buffers := make(map[Cue]*beep.Buffer)
	for _, file := range files {
		if file.IsDir() {
			continue
		}
		ext := strings.ToLower(filepath.Ext(file.Name()))
		if ext != ".mp3" && ext != ".wav" {
			continue
		}
		cue := Cue(strings.TrimSuffix(file.Name(), filepath.Ext(file.Name())))
		buf, err := load(filepath.Join(m.dir, file.Name()), ext)
		if err != nil {
			logger.LogError("加载音效 %s 失败: %v", file.Name(), err)
			continue
		}
		buffers[cue] = buf
	}

	m.mu.Lock()
	m.buffers = buffers
	m.enabled = true
	m.mu.Unlock()
	return nil
}

func load(path, ext string) (*beep.Buffer, error) {
	f, err := os.Open(filepath.Clean(path))
	if err != nil {
		return nil, err
	}
	defer func() { _ = f.Close() }()

	var streamer beep.StreamSeekCloser
	var format beep.Format
	switch ext {
	case ".mp3":
		streamer, format, err = mp3.Decode(f)
	default:
		streamer, format, err = wav.Decode(f)
	}
	if err != nil {
		return nil, err
	}
	defer func() { _ = streamer.Close() }()

	var resampled beep.Streamer = streamer
	if format.SampleRate != sampleRate {
		resampled = beep.Resample(4, format.SampleRate, sampleRate, streamer)
	}

	buffer := beep.NewBuffer(beep.Format{
		SampleRate:  sampleRate,
		NumChannels: 2,
		Precision:   4,
	})
	buffer.Append(resampled)
	return buffer, nil
}

// Play 播放音效，未加载的音效静默忽略
func (m *Manager) Play(cues ...Cue) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if !m.enabled {
		return
	}
	for _, cue := range cues {
		if buffer, ok := m.buffers[cue]; ok {
			speaker.Play(buffer.Streamer(0, buffer.Len()))
		}
	}
}

// Close 停止播放
func (m *Manager) Close() {
	m.mu.Lock()
	m.enabled = false
	m.mu.Unlock()
	speaker.Clear()
}
