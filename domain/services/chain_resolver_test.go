package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"titlechain/domain/config"
	"titlechain/domain/core/aggregates"
	"titlechain/domain/core/entities"
	"titlechain/domain/core/valueobjects"
)

func act(numero string, antecedents ...string) entities.Act {
	return entities.Act{
		ID:                     "rec-" + numero,
		NumeroActe:             numero,
		NumerosActesAnterieurs: antecedents,
		Acheteurs:              []string{"buyer of " + numero},
		Vendeurs:               []string{"seller of " + numero},
	}
}

func canvasWithDepth(depth int) *aggregates.Canvas {
	cfg := config.DefaultDomainConfig()
	cfg.AutoChainDepth = depth
	return aggregates.NewCanvas(cfg)
}

func nodeFor(t *testing.T, c *aggregates.Canvas, numero string) *entities.PlacedNode {
	t.Helper()
	node, ok := c.NodeByActNumber(numero)
	require.True(t, ok, "act %s should be placed", numero)
	return node
}

func TestChainResolver_ExampleScenario(t *testing.T) {
	catalog := NewMapCatalog([]entities.Act{act("100", "50"), act("50")})
	c := canvasWithDepth(1)

	result, err := NewChainResolver().Place(c, catalog, act("100", "50"), valueobjects.MustPosition(200, 200))
	require.NoError(t, err)

	assert.True(t, result.Placed)
	assert.Equal(t, 2, c.NodeCount())
	assert.Equal(t, 1, result.Links)
	require.Len(t, result.Antecedents, 1)

	n100 := nodeFor(t, c, "100")
	n50 := nodeFor(t, c, "50")
	assert.True(t, n100.BuyerBlockPos().Equals(valueobjects.MustPosition(200, 200)))
	assert.True(t, n50.BuyerBlockPos().Equals(valueobjects.MustPosition(200, 600)))

	conns := c.Connections()
	require.Len(t, conns, 1)
	assert.Equal(t, valueobjects.ConnectionAutoChain, conns[0].Kind)
	assert.Equal(t, n100.ID(), conns[0].FromNodeID)
	assert.Equal(t, valueobjects.BlockSeller, conns[0].FromBlock)
	assert.Equal(t, n50.ID(), conns[0].ToNodeID)
	assert.Equal(t, valueobjects.BlockBuyer, conns[0].ToBlock)
}

func TestChainResolver_TwoAntecedentsStackWithoutOverlap(t *testing.T) {
	catalog := NewMapCatalog([]entities.Act{act("A", "B", "C"), act("B"), act("C")})
	c := canvasWithDepth(1)
	cfg := c.Config()

	result, err := NewChainResolver().Place(c, catalog, act("A", "B", "C"), valueobjects.MustPosition(0, 0))
	require.NoError(t, err)

	assert.Equal(t, 3, c.NodeCount())
	assert.Equal(t, 2, result.Links)

	a, b, cc := nodeFor(t, c, "A"), nodeFor(t, c, "B"), nodeFor(t, c, "C")
	assert.Equal(t, cfg.AntecedentBaseOffset, b.BuyerBlockPos().Y())
	assert.Equal(t, cfg.AntecedentBaseOffset+cfg.BlockGroupHeight, cc.BuyerBlockPos().Y())

	conns := c.ConnectionsByKind(valueobjects.ConnectionAutoChain)
	require.Len(t, conns, 2)
	assert.Equal(t, a.ID(), conns[0].FromNodeID)
	assert.Equal(t, b.ID(), conns[0].ToNodeID)
	assert.Equal(t, a.ID(), conns[1].FromNodeID)
	assert.Equal(t, cc.ID(), conns[1].ToNodeID)
}

func TestChainResolver_MissingAntecedentIsSkipped(t *testing.T) {
	catalog := NewMapCatalog([]entities.Act{act("A", "Z")})
	c := canvasWithDepth(1)

	result, err := NewChainResolver().Place(c, catalog, act("A", "Z"), valueobjects.MustPosition(0, 0))
	require.NoError(t, err)

	assert.Equal(t, 1, c.NodeCount())
	assert.Equal(t, 0, c.ConnectionCount())
	assert.Equal(t, []string{"Z"}, result.Missing)
}

func TestChainResolver_NoAntecedents(t *testing.T) {
	c := canvasWithDepth(1)

	result, err := NewChainResolver().Place(c, NewMapCatalog(nil), act("A"), valueobjects.MustPosition(0, 0))
	require.NoError(t, err)

	assert.True(t, result.Placed)
	assert.Equal(t, 1, c.NodeCount())
	assert.Empty(t, result.Antecedents)
}

func TestChainResolver_OnlyOneLevelByDefault(t *testing.T) {
	catalog := NewMapCatalog([]entities.Act{act("A", "B"), act("B", "C"), act("C")})
	c := aggregates.NewCanvas(nil)

	_, err := NewChainResolver().Place(c, catalog, act("A", "B"), valueobjects.MustPosition(0, 0))
	require.NoError(t, err)

	assert.Equal(t, 2, c.NodeCount())
	_, placed := c.NodeByActNumber("C")
	assert.False(t, placed)
}

func TestChainResolver_DeeperExpansion(t *testing.T) {
	catalog := NewMapCatalog([]entities.Act{act("A", "B"), act("B", "C"), act("C")})
	c := canvasWithDepth(2)

	result, err := NewChainResolver().Place(c, catalog, act("A", "B"), valueobjects.MustPosition(0, 0))
	require.NoError(t, err)

	assert.Equal(t, 3, c.NodeCount())
	assert.Equal(t, 2, result.Links)
	b, cc := nodeFor(t, c, "B"), nodeFor(t, c, "C")
	assert.Equal(t, b.BuyerBlockPos().Y()+c.Config().AntecedentBaseOffset, cc.BuyerBlockPos().Y())
}

func TestChainResolver_DeeperExpansionDoesNotOverlap(t *testing.T) {
	catalog := NewMapCatalog([]entities.Act{
		act("A", "B", "C"), act("B", "D"), act("C"), act("D"),
	})
	c := canvasWithDepth(2)

	_, err := NewChainResolver().Place(c, catalog, act("A", "B", "C"), valueobjects.MustPosition(0, 0))
	require.NoError(t, err)
	require.Equal(t, 4, c.NodeCount())

	seen := map[valueobjects.Position]string{}
	for _, n := range c.Nodes() {
		pos := n.BuyerBlockPos()
		if other, dup := seen[pos]; dup {
			t.Fatalf("%s and %s share buyer position %v", other, n.ActNumber(), pos)
		}
		seen[pos] = n.ActNumber()
	}

	step := c.Config().BlockGroupHeight
	assert.Equal(t, 400.0, nodeFor(t, c, "B").BuyerBlockPos().Y())
	assert.Equal(t, 800.0, nodeFor(t, c, "D").BuyerBlockPos().Y())
	assert.Equal(t, 800.0+step, nodeFor(t, c, "C").BuyerBlockPos().Y())
}

func TestChainResolver_BlankAntecedentKeepsStackingIndex(t *testing.T) {
	catalog := NewMapCatalog([]entities.Act{act("A", "", "B"), act("B")})
	c := canvasWithDepth(1)

	_, err := NewChainResolver().Place(c, catalog, act("A", "", "B"), valueobjects.MustPosition(0, 0))
	require.NoError(t, err)

	cfg := c.Config()
	assert.Equal(t, cfg.AntecedentBaseOffset+cfg.BlockGroupHeight, nodeFor(t, c, "B").BuyerBlockPos().Y())
}

func TestChainResolver_MatchesPaddedActNumbers(t *testing.T) {
	catalog := NewMapCatalog([]entities.Act{act("100", "50"), act("50 ")})
	c := canvasWithDepth(1)

	result, err := NewChainResolver().Place(c, catalog, act("100", " 50"), valueobjects.MustPosition(0, 0))
	require.NoError(t, err)

	assert.Empty(t, result.Missing)
	assert.Equal(t, 1, result.Links)
	nodeFor(t, c, "50")
}

func TestChainResolver_CycleTerminates(t *testing.T) {
	catalog := NewMapCatalog([]entities.Act{act("A", "B"), act("B", "A")})
	c := canvasWithDepth(10)

	result, err := NewChainResolver().Place(c, catalog, act("A", "B"), valueobjects.MustPosition(0, 0))
	require.NoError(t, err)

	assert.Equal(t, 2, c.NodeCount())
	assert.Equal(t, 2, result.Links, "A->B and B->A")
	assert.NoError(t, c.Validate())
}

func TestChainResolver_SelfReferenceCreatesNoLoop(t *testing.T) {
	catalog := NewMapCatalog([]entities.Act{act("A", "A")})
	c := canvasWithDepth(1)

	_, err := NewChainResolver().Place(c, catalog, act("A", "A"), valueobjects.MustPosition(0, 0))
	require.NoError(t, err)

	assert.Equal(t, 1, c.NodeCount())
	assert.Equal(t, 0, c.ConnectionCount())
}

func TestChainResolver_LinksToAlreadyPlacedAntecedent(t *testing.T) {
	catalog := NewMapCatalog([]entities.Act{act("A", "B"), act("B")})
	c := canvasWithDepth(1)
	resolver := NewChainResolver()

	_, err := resolver.Place(c, catalog, act("B"), valueobjects.MustPosition(900, 900))
	require.NoError(t, err)

	result, err := resolver.Place(c, catalog, act("A", "B"), valueobjects.MustPosition(0, 0))
	require.NoError(t, err)

	assert.Empty(t, result.Antecedents)
	assert.Equal(t, 1, result.Links)
	assert.Equal(t, 2, c.NodeCount())
	assert.True(t, nodeFor(t, c, "B").BuyerBlockPos().Equals(valueobjects.MustPosition(900, 900)))
}

func TestChainResolver_DuplicateRootDoesNothing(t *testing.T) {
	catalog := NewMapCatalog([]entities.Act{act("A", "B"), act("B")})
	c := canvasWithDepth(1)
	resolver := NewChainResolver()

	first, err := resolver.Place(c, catalog, act("A", "B"), valueobjects.MustPosition(0, 0))
	require.NoError(t, err)
	second, err := resolver.Place(c, catalog, act("A", "B"), valueobjects.MustPosition(50, 50))
	require.NoError(t, err)

	assert.False(t, second.Placed)
	assert.Equal(t, first.RootID, second.RootID)
	assert.Equal(t, 2, c.NodeCount())
	assert.Equal(t, 1, c.ConnectionCount())
}

func TestChainResolver_ZeroDepthPlacesOnlyRoot(t *testing.T) {
	catalog := NewMapCatalog([]entities.Act{act("A", "B"), act("B")})
	c := canvasWithDepth(0)

	_, err := NewChainResolver().Place(c, catalog, act("A", "B"), valueobjects.MustPosition(0, 0))
	require.NoError(t, err)

	assert.Equal(t, 1, c.NodeCount())
}

func TestChainResolver_NodeLimitStopsExpansion(t *testing.T) {
	cfg := config.DefaultDomainConfig()
	cfg.MaxNodesPerCanvas = 2
	c := aggregates.NewCanvas(cfg)
	catalog := NewMapCatalog([]entities.Act{act("A", "B", "C"), act("B"), act("C")})

	_, err := NewChainResolver().Place(c, catalog, act("A", "B", "C"), valueobjects.MustPosition(0, 0))

	require.Error(t, err)
	assert.Equal(t, 2, c.NodeCount())
	assert.NoError(t, c.Validate())
}
