package node

import (
	"context"
	"testing"
	"time"

	"github.com/cwbudde/algo-fxhost/component"
	"github.com/cwbudde/algo-fxhost/graph"
	"github.com/cwbudde/algo-fxhost/internal/testutil"
	"github.com/cwbudde/algo-fxhost/param"
	"github.com/cwbudde/algo-fxhost/unit"
)

const (
	addrFrequency = 0
	addrGain      = 1
	addrQ         = 2
)

var (
	peqDesc  = component.Effect("peq0", "AuKt")
	testDesc = component.Effect("test", "Test")
	mono48   = unit.Format{SampleRate: 48000, Channels: 1}
)

func peqTable() *param.Table {
	return param.MustTable(
		param.New(addrFrequency, "centerFrequency").Range(12, 20000).Default(1000).Unit("Hz").Build(),
		param.New(addrGain, "gain").Range(0, 10).Default(1).Build(),
		param.New(addrQ, "q").Range(0, 2).Default(0.707).Build(),
	)
}

func registration(desc component.Description, table *param.Table, f *testutil.Factory) component.Registration {
	return component.Registration{
		Description: desc,
		Name:        "Test " + desc.Subtype.String(),
		Version:     1,
		Params:      table,
		New:         f.New,
	}
}

type fixture struct {
	host     *Host
	engine   *graph.Engine
	registry *component.Registry
	table    *param.Table
	factory  *testutil.Factory
}

// newFixture registers a peq0-like component backed by a test factory.
func newFixture(t *testing.T, fopts ...testutil.FactoryOption) *fixture {
	t.Helper()

	table := peqTable()
	f := testutil.NewFactory(table, fopts...)
	reg := component.NewRegistry()
	reg.MustRegister(registration(peqDesc, table, f))

	engine := graph.New(graph.WithFormat(mono48), graph.WithBlockSize(64))
	host := NewHost(reg, engine)

	t.Cleanup(func() {
		f.Release()
		_ = host.Close()
		_ = engine.Close()
	})

	return &fixture{host: host, engine: engine, registry: reg, table: table, factory: f}
}

func waitNode(t *testing.T, n *Node) error {
	t.Helper()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	err := n.Wait(ctx)
	if ctx.Err() != nil {
		t.Fatalf("node %d did not finish instantiating", n.ID())
	}

	return err
}

func boundTree(t *testing.T, b *Binding) *param.Tree {
	t.Helper()

	tree := param.NewTree(b.table)
	if err := b.Bind(tree); err != nil {
		t.Fatalf("Bind returned unexpected error: %v", err)
	}

	return tree
}
