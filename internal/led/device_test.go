package led

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/smazurov/tf96ctl/internal/events"
	"github.com/smazurov/tf96ctl/internal/protocol"
)

func TestSetPhaseAddressesWritesRegisterPairs(t *testing.T) {
	d, sim := newSimDevice(t, Limits{})

	require.NoError(t, d.SetPhaseAddresses(0, "1F", "0A"))
	assert.Equal(t, []string{"CA2", "CW31", "CA3", "CW10"}, sim.Commands())

	sim.ResetCommands()
	require.NoError(t, d.SetPhaseAddresses(1, "0x20", "ff"))
	assert.Equal(t, []string{"CA10", "CW32", "CA11", "CW255"}, sim.Commands())
	assert.Equal(t, uint32(0xff), sim.Register(0x0B))
}

func TestSetPhaseAddressesRejectsBeforeIO(t *testing.T) {
	d, sim := newSimDevice(t, Limits{})

	assert.True(t, protocol.IsRange(d.SetPhaseAddresses(2, "1", "2")))
	assert.True(t, protocol.IsRange(d.SetPhaseAddresses(0, "1F", "zz")))
	assert.True(t, protocol.IsRange(d.SetPhaseAddresses(0, "", "01")))
	assert.Empty(t, sim.Commands())
}

func TestSetChannelIntensity(t *testing.T) {
	d, sim := newSimDevice(t, Limits{})

	require.NoError(t, d.SetChannelIntensity(14, 7))
	assert.Equal(t, []string{"CL14", "CI7"}, sim.Commands())
	assert.Equal(t, uint8(7), sim.Channel(14))
	assert.Equal(t, 7, d.Levels().Channels[14])
	assert.Equal(t, -1, d.Levels().Channels[0])
}

func TestIntensityRangeRejectedBeforeWrite(t *testing.T) {
	d, sim := newSimDevice(t, Limits{})

	tests := []struct {
		name string
		err  error
	}{
		{"channel 16", d.SetChannelIntensity(16, 1)},
		{"channel -1", d.SetChannelIntensity(-1, 1)},
		{"intensity 16", d.SetChannelIntensity(0, 16)},
		{"master 0", d.SetMasterIntensity(0)},
		{"master 16", d.SetMasterIntensity(16)},
		{"level 16", d.SetLevel(16)},
		{"register 256", d.WriteRegister(256, 1)},
		{"register value", d.WriteRegister(1, 1<<32)},
		{"negative value", d.WriteRegister(1, -1)},
	}
	for _, tt := range tests {
		assert.True(t, protocol.IsRange(tt.err), tt.name)
	}
	assert.Empty(t, sim.Commands())
}

func TestChannelMinimumConfigurable(t *testing.T) {
	d, sim := newSimDevice(t, DefaultLimits().WithChannelMin(1))

	assert.True(t, protocol.IsRange(d.SetChannelIntensity(3, 0)))
	require.NoError(t, d.SetChannelIntensity(3, 1))
	assert.Equal(t, uint8(1), sim.Channel(3))

	// only 0 and 1 are accepted as lower bounds
	assert.Equal(t, 0, DefaultLimits().WithChannelMin(5).ChannelMin)
}

func TestSetMasterAndLevel(t *testing.T) {
	d, sim := newSimDevice(t, Limits{})

	require.NoError(t, d.SetMasterIntensity(1))
	require.NoError(t, d.SetLevel(9))
	assert.Equal(t, []string{"CG1", "EL9"}, sim.Commands())
	assert.Equal(t, uint8(1), sim.Master())
	assert.Equal(t, uint32(9), sim.Level())

	levels := d.Levels()
	assert.Equal(t, 1, levels.Master)
	assert.Equal(t, 9, levels.Level)
}

func TestReadWriteRegister(t *testing.T) {
	d, sim := newSimDevice(t, Limits{})

	require.NoError(t, d.WriteRegister(0x0F, 0x43))
	v, err := d.ReadRegister(0x0F)
	require.NoError(t, err)
	assert.Equal(t, uint32(0x43), v)
	assert.Equal(t, []string{"CA15", "CW67", "Cr15"}, sim.Commands())
}

func TestReadRegisterFailures(t *testing.T) {
	d, sim := newSimDevice(t, Limits{})

	sim.SetMalformed(true)
	_, err := d.ReadRegister(6)
	assert.True(t, protocol.IsProtocol(err))

	sim.SetMalformed(false)
	sim.SetSilent(true)
	_, err = d.ReadRegister(6)
	assert.True(t, protocol.IsProtocol(err))

	sim.SetSilent(false)
	sim.FailWrites(errors.New("unplugged"))
	_, err = d.ReadRegister(6)
	assert.True(t, protocol.IsStream(err))
}

func TestDumpRegisters(t *testing.T) {
	d, sim := newSimDevice(t, Limits{})
	sim.SetRegister(0x06, 0x41)

	regs, err := d.DumpRegisters(context.Background(), 0x00, 0x0F)
	require.NoError(t, err)
	require.Len(t, regs, 16)
	assert.Equal(t, "0x06", regs[6].Address)
	assert.Equal(t, uint32(0x41), regs[6].Value)
	assert.Equal(t, "0x41", regs[6].Hex)
	assert.Equal(t, uint32(PhaseOff), regs[15].Value)

	_, err = d.DumpRegisters(context.Background(), 5, 4)
	assert.True(t, protocol.IsRange(err))
}

func TestDumpRegistersCancelled(t *testing.T) {
	d, sim := newSimDevice(t, Limits{})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := d.DumpRegisters(ctx, 0, 15)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, sim.Commands())
}

func TestInit(t *testing.T) {
	d, sim := newSimDevice(t, Limits{})
	sim.SetRegister(RegPortsLow, 0x01)

	states, err := d.Init(context.Background(), DefaultIntensity)
	require.NoError(t, err)
	require.Len(t, states, NumPorts)
	assert.False(t, states[0].Enabled)
	assert.True(t, states[1].Enabled)

	for ch := range NumChannels {
		assert.Equal(t, uint8(DefaultIntensity), sim.Channel(ch))
		assert.Equal(t, DefaultIntensity, d.Levels().Channels[ch])
	}

	cmds := sim.Commands()
	require.Len(t, cmds, 2*NumChannels+2)
	assert.Equal(t, "CL0", cmds[0])
	assert.Equal(t, "CI2", cmds[1])
	assert.Equal(t, []string{"Cr6", "Cr7"}, cmds[2*NumChannels:])
}

func TestInitStopsOnWriteFailure(t *testing.T) {
	d, sim := newSimDevice(t, Limits{})
	sim.FailWrites(errors.New("unplugged"))

	_, err := d.Init(context.Background(), DefaultIntensity)
	assert.True(t, protocol.IsStream(err))
}

func TestApplyColorToGroup(t *testing.T) {
	d, sim := newSimDevice(t, Limits{})
	c, err := ParseHex("#ff8000")
	require.NoError(t, err)

	got, err := d.ApplyColor("led1", c)
	require.NoError(t, err)
	assert.Equal(t, Triple{15, 8, 0}, got)

	// led1 is red=2 green=0 blue=1
	assert.Equal(t, uint8(15), sim.Channel(2))
	assert.Equal(t, uint8(8), sim.Channel(0))
	assert.Equal(t, uint8(0), sim.Channel(1))
	assert.Equal(t, []string{"CL2", "CI15", "CL0", "CI8", "CL1", "CI0"}, sim.Commands())

	back, err := d.GroupColor("led1")
	require.NoError(t, err)
	assert.Equal(t, RGB{255, 136, 0}, back)
}

func TestApplyColorToAll(t *testing.T) {
	d, sim := newSimDevice(t, Limits{})

	_, err := d.ApplyColor(AllGroups, RGB{0, 255, 0})
	require.NoError(t, err)
	assert.Len(t, sim.Commands(), 4*6)
	for _, g := range Groups() {
		assert.Equal(t, uint8(0), sim.Channel(g.Red), g.Name)
		assert.Equal(t, uint8(15), sim.Channel(g.Green), g.Name)
		assert.Equal(t, uint8(0), sim.Channel(g.Blue), g.Name)
	}

	_, err = d.GroupColor(AllGroups)
	assert.True(t, protocol.IsRange(err))
}

func TestApplyColorRespectsChannelMinimum(t *testing.T) {
	d, sim := newSimDevice(t, DefaultLimits().WithChannelMin(1))

	_, err := d.ApplyColor("led2", RGB{0, 0, 0})
	assert.True(t, protocol.IsRange(err))
	assert.Empty(t, sim.Commands())
}

func TestGroupColorUncommandedIsBlack(t *testing.T) {
	d, _ := newSimDevice(t, Limits{})
	c, err := d.GroupColor("signal")
	require.NoError(t, err)
	assert.Equal(t, RGB{}, c)
}

func TestDeviceTickWritesBlinkRegister(t *testing.T) {
	d, sim := newSimDevice(t, Limits{})
	require.NoError(t, d.SetBlink(true, 5))

	now := time.Unix(1000, 0)
	toggled, err := d.Tick(now)
	require.NoError(t, err)
	assert.True(t, toggled)
	assert.Equal(t, uint32(PhaseOn), sim.Register(RegBlinkControl))

	toggled, err = d.Tick(now.Add(100 * time.Millisecond))
	require.NoError(t, err)
	assert.False(t, toggled)

	toggled, err = d.Tick(now.Add(500 * time.Millisecond))
	require.NoError(t, err)
	assert.True(t, toggled)
	assert.Equal(t, uint32(PhaseOff), sim.Register(RegBlinkControl))

	// disabling writes nothing
	sim.ResetCommands()
	require.NoError(t, d.SetBlink(false, 5))
	assert.Empty(t, sim.Commands())
}

func TestSetBlinkValidates(t *testing.T) {
	d, _ := newSimDevice(t, Limits{})
	assert.True(t, protocol.IsRange(d.SetBlink(true, 11)))
	assert.False(t, d.Blink().Enabled)
}

func TestDevicePublishesEvents(t *testing.T) {
	bus := &recordingBus{}
	sim := NewSim()
	sim.SetRegister(RegPortsLow, 0xFF)
	d := NewDevice(protocol.NewConn(sim, testLogger()), Options{Bus: bus, Logger: testLogger()})

	require.NoError(t, d.SetPortEnabled(4, true))
	require.NoError(t, d.SetMasterIntensity(3))
	require.NoError(t, d.SetBlink(true, 2))

	var types []uint32
	for _, ev := range bus.snapshot() {
		types = append(types, ev.Type())
	}
	assert.Equal(t, []uint32{
		events.TypeRegisterWritten,
		events.TypePortStateChanged,
		events.TypeMasterIntensityChanged,
		events.TypeBlinkConfigChanged,
	}, types)

	port := bus.snapshot()[1].(events.PortStateChangedEvent)
	assert.Equal(t, 4, port.Port)
	assert.True(t, port.Enabled)
}

type closeRecorder struct{ closed bool }

func (c *closeRecorder) Close() error {
	c.closed = true
	return nil
}

func TestDeviceClose(t *testing.T) {
	closer := &closeRecorder{}
	d := NewDevice(protocol.NewConn(NewSim(), testLogger()), Options{Closer: closer})
	require.NoError(t, d.Close())
	assert.True(t, closer.closed)

	d, _ = newSimDevice(t, Limits{})
	assert.NoError(t, d.Close())
}

func TestConcurrentPortUpdatesAreSerialized(t *testing.T) {
	d, sim := newSimDevice(t, Limits{})
	sim.SetRegister(RegPortsLow, 0xFF)
	require.NoError(t, d.SetBlink(true, 10))

	var wg sync.WaitGroup
	for port := range 8 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			assert.NoError(t, d.SetPortEnabled(port, true))
		}()
	}
	wg.Add(1)
	go func() {
		defer wg.Done()
		start := time.Now()
		for i := range 50 {
			_, err := d.Tick(start.Add(time.Duration(i) * time.Millisecond))
			assert.NoError(t, err)
		}
	}()
	wg.Wait()

	assert.Equal(t, uint32(0x00), sim.Register(RegPortsLow))

	// every read-modify-write stays contiguous on the wire
	cmds := sim.Commands()
	for i, c := range cmds {
		if c != "Cr6" {
			continue
		}
		require.Less(t, i+2, len(cmds), "truncated update after command %d", i)
		assert.Equal(t, "CA6", cmds[i+1], "command %d", i+1)
		assert.True(t, strings.HasPrefix(cmds[i+2], "CW"), "command %d = %s", i+2, cmds[i+2])
	}
	blinkSelect := fmt.Sprintf("CA%d", RegBlinkControl)
	for i, c := range cmds {
		if c == blinkSelect {
			require.Less(t, i+1, len(cmds))
			assert.True(t, strings.HasPrefix(cmds[i+1], "CW"), "command %d = %s", i+1, cmds[i+1])
		}
	}
}
