package sampler

import (
	"encoding/json"
	"errors"
	"fmt"
	"slices"
)

// ErrCorruptHistory 表示持久化的历史记录无法解析。
var ErrCorruptHistory = errors.New("corrupt pick history")

// EncodeHistory 将历史记录序列化为 JSON 数组。
func EncodeHistory(history []int) (string, error) {
	if history == nil {
		history = []int{}
	}
	data, err := json.Marshal(history)
	if err != nil {
		return "", fmt.Errorf("encode history: %w", err)
	}
	return string(data), nil
}

// DecodeHistory 解析 JSON 数组并整理为 [0, n) 内升序、无重复的历史记录。
// dropped 为被丢弃的越界或重复值的数量。
func DecodeHistory(raw string, n int) (history []int, dropped int, err error) {
	if raw == "" {
		return nil, 0, nil
	}

	var values []int
	if err := json.Unmarshal([]byte(raw), &values); err != nil {
		return nil, 0, errors.Join(ErrCorruptHistory, err)
	}

	history = make([]int, 0, len(values))
	for _, v := range values {
		if v < 0 || v >= n {
			dropped++
			continue
		}
		history = append(history, v)
	}
	slices.Sort(history)
	before := len(history)
	history = slices.Compact(history)
	dropped += before - len(history)

	return history, dropped, nil
}
