package tuntap

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestQueueReadWrite(t *testing.T) {
	fake := NewFakeBackend()
	q := buildQueue(t, fake, NewBuilder().PacketInfo(false))
	defer q.Close()
	peer := fake.Peer(q)
	require.NotNil(t, peer)

	packet := []byte{0x45, 0x00, 0x00, 0x14}
	go peer.Write(packet)

	buf := make([]byte, 1500)
	n, err := q.Read(buf)
	require.NoError(t, err)
	assert.Equal(t, packet, buf[:n])

	done := make(chan []byte, 1)
	go func() {
		b := make([]byte, 1500)
		n, _ := peer.Read(b)
		done <- b[:n]
	}()
	_, err = q.Write(packet)
	require.NoError(t, err)
	assert.Equal(t, packet, <-done)
}

func TestQueueReadContextCanceled(t *testing.T) {
	fake := NewFakeBackend()
	q := buildQueue(t, fake, NewBuilder())
	defer q.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	_, err := q.ReadContext(ctx, make([]byte, 64))
	assert.ErrorIs(t, err, context.DeadlineExceeded)

	// The queue is still usable after an abandoned read.
	peer := fake.Peer(q)
	go peer.Write([]byte{1, 2, 3})
	buf := make([]byte, 64)
	n, err := q.ReadContext(context.Background(), buf)
	require.NoError(t, err)
	assert.Equal(t, []byte{1, 2, 3}, buf[:n])
}

func TestQueueReadContextAlreadyDone(t *testing.T) {
	fake := NewFakeBackend()
	q := buildQueue(t, fake, NewBuilder())
	defer q.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := q.ReadContext(ctx, make([]byte, 64))
	assert.ErrorIs(t, err, context.Canceled)
	_, err = q.WriteContext(ctx, []byte{1})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestQueueWriteContextCanceled(t *testing.T) {
	fake := NewFakeBackend()
	q := buildQueue(t, fake, NewBuilder())
	defer q.Close()

	// Nobody reads the peer, so the write blocks until ctx expires.
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	_, err := q.WriteContext(ctx, []byte{1, 2, 3})
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestQueueCloneIndependentClose(t *testing.T) {
	fake := NewFakeBackend()
	q := buildQueue(t, fake, NewBuilder())

	clone, err := q.Clone()
	require.NoError(t, err)
	require.NoError(t, q.Close())

	peer := fake.Peer(clone)
	go peer.Write([]byte{9})
	buf := make([]byte, 8)
	n, err := clone.Read(buf)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	require.NoError(t, clone.Close())
	_, err = q.Clone()
	assert.Error(t, err, "cannot duplicate a closed descriptor")
}

func TestQueueAccessors(t *testing.T) {
	fake := NewFakeBackend()
	q := buildQueue(t, fake, NewBuilder().Name("acc0").MTU(1300))
	defer q.Close()

	assert.Equal(t, "acc0", q.Name())
	assert.Equal(t, "acc0", q.Interface().Name())
	mtu, err := q.MTU()
	require.NoError(t, err)
	assert.Equal(t, 1300, mtu)

	_, err = q.SyscallConn()
	assert.ErrorIs(t, err, ErrUnsupported, "fake descriptors have no raw fd")
}
