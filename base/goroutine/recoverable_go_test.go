package goroutine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/x-xyz/nftgallery/base/ctx"
)

func TestRecoverableGo(t *testing.T) {
	res := []string{}

	<-RecoverableGo(
		ctx.Background(),
		func() {
			res = append(res, "run task")
			panic("panic")
		},
		WithBeforeStart(func() {
			res = append(res, "before start")
		}),
		WithAfterEnded(func() {
			res = append(res, "after ended")
		}),
		WithAfterRecovered(func(p interface{}, stack []byte) {
			res = append(res, "after recovered")
			res = append(res, p.(string))
		}),
	)

	assert.Equal(t, []string{
		"before start",
		"run task",
		"after ended",
		"after recovered",
		"panic",
	}, res)
}

func TestRecoverableNoPanic(t *testing.T) {
	ran := false
	task, done := Recoverable(ctx.Background(), func() {
		ran = true
	})
	assert.False(t, ran)

	task()
	ev, ok := <-done
	assert.True(t, ran)
	assert.False(t, ok)
	assert.Nil(t, ev)
}
