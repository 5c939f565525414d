package sampler

import (
	"math/rand/v2"
	"slices"
)

// Rand 是抽样所需的随机源，*rand.Rand 满足该接口。
type Rand interface {
	IntN(n int) int
}

type globalRand struct{}

func (globalRand) IntN(n int) int { return rand.IntN(n) }

// Next 在 [0, n) 中排除 history 后均匀地抽取一个下标。
//
// history 必须升序且无重复，所有值位于 [0, n)。当 history 已包含全部 n 个下标时，
// 视为一轮结束：先清空再抽取，并返回 reset=true。返回的新 history 已插入抽中的下标，
// 入参切片不会被修改。n < 1 时返回 -1。
func Next(rng Rand, n int, history []int) (index int, next []int, reset bool) {
	if n < 1 {
		return -1, history, false
	}
	if len(history) >= n {
		history = nil
		reset = true
	}

	index = drawExcluding(rng, n, history)

	pos, _ := slices.BinarySearch(history, index)
	next = make([]int, 0, len(history)+1)
	next = append(next, history[:pos]...)
	next = append(next, index)
	next = append(next, history[pos:]...)
	return index, next, reset
}

// drawExcluding 先在 [0, n-k) 中抽取 r，再按升序遍历排除值，
// 每遇到一个 e <= r 就将 r 加一，得到补集上的均匀分布。
func drawExcluding(rng Rand, n int, excluded []int) int {
	r := rng.IntN(n - len(excluded))
	for _, e := range excluded {
		if e > r {
			break
		}
		r++
	}
	return r
}

// Visibility 返回长度为 n 的可见性表，只有 index 对应的位置为 true。
// index 越界时全部可见。
func Visibility(n, index int) []bool {
	visible := make([]bool, n)
	if index < 0 || index >= n {
		for i := range visible {
			visible[i] = true
		}
		return visible
	}
	visible[index] = true
	return visible
}
