package engine

import (
	"fmt"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/flowgrid/flowgrid/pkg/models"
)

func validInit() ExecuteInit {
	return ExecuteInit{AgentID: "agent-1", TenantID: "tenant-1"}
}

func chainGraph(nodes int) *models.WorkflowGraph {
	graph := &models.WorkflowGraph{ID: "wf-1", Name: "Chain"}

	for i := 0; i < nodes; i++ {
		nodeType := models.NodeTypeAction
		if i == 0 {
			nodeType = models.NodeTypeTrigger
		}

		graph.Nodes = append(graph.Nodes, &models.Node{
			ID:   fmt.Sprintf("n%d", i),
			Name: fmt.Sprintf("Node %d", i),
			Type: nodeType,
		})

		if i > 0 {
			graph.Edges = append(graph.Edges, &models.Edge{
				ID:     fmt.Sprintf("e%d", i),
				Source: fmt.Sprintf("n%d", i-1),
				Target: fmt.Sprintf("n%d", i),
			})
		}
	}

	return graph
}

func TestValidateGraph(t *testing.T) {
	t.Parallel()

	v := validator.New(validator.WithRequiredStructEnabled())
	cfg := Config{MaxWorkflowNodes: 10, MaxWorkflowEdges: 20}.withDefaults()
	logger := testLogger()

	tests := []struct {
		name    string
		graph   *models.WorkflowGraph
		init    ExecuteInit
		wantErr error
	}{
		{
			name:    "nil graph",
			graph:   nil,
			init:    validInit(),
			wantErr: ErrEmptyWorkflow,
		},
		{
			name:    "empty nodes",
			graph:   &models.WorkflowGraph{ID: "wf-1"},
			init:    validInit(),
			wantErr: ErrEmptyWorkflow,
		},
		{
			name: "workflow id with path characters",
			graph: func() *models.WorkflowGraph {
				g := chainGraph(2)
				g.ID = "../etc/passwd"

				return g
			}(),
			init:    validInit(),
			wantErr: ErrInvalidIdentifier,
		},
		{
			name:    "agent id with spaces",
			graph:   chainGraph(2),
			init:    ExecuteInit{AgentID: "agent one", TenantID: "tenant-1"},
			wantErr: ErrInvalidIdentifier,
		},
		{
			name:    "missing tenant id",
			graph:   chainGraph(2),
			init:    ExecuteInit{AgentID: "agent-1"},
			wantErr: ErrInvalidIdentifier,
		},
		{
			name:    "node count at limit accepted",
			graph:   chainGraph(10),
			init:    validInit(),
			wantErr: nil,
		},
		{
			name:    "node count over limit rejected",
			graph:   chainGraph(11),
			init:    validInit(),
			wantErr: ErrTooManyNodes,
		},
		{
			name: "edge count over limit rejected",
			graph: func() *models.WorkflowGraph {
				g := chainGraph(3)
				for i := 0; i < 20; i++ {
					g.Edges = append(g.Edges, &models.Edge{
						ID:     fmt.Sprintf("extra%d", i),
						Source: "n0",
						Target: "n1",
					})
				}

				return g
			}(),
			init:    validInit(),
			wantErr: ErrTooManyEdges,
		},
		{
			name: "node missing name rejected",
			graph: func() *models.WorkflowGraph {
				g := chainGraph(2)
				g.Nodes[1].Name = ""

				return g
			}(),
			init:    validInit(),
			wantErr: ErrInvalidIdentifier,
		},
		{
			name: "ai_agent without agent config rejected",
			graph: func() *models.WorkflowGraph {
				g := chainGraph(2)
				g.Nodes[1].Type = models.NodeTypeAIAgent

				return g
			}(),
			init:    validInit(),
			wantErr: ErrMissingAgentConfig,
		},
		{
			name: "ai_agent with agent config accepted",
			graph: func() *models.WorkflowGraph {
				g := chainGraph(2)
				g.Nodes[1].Type = models.NodeTypeAIAgent
				g.Nodes[1].AgentConfig = &models.AgentConfig{Model: "gpt-4o-mini"}

				return g
			}(),
			init:    validInit(),
			wantErr: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			err := validateGraph(v, tt.graph, tt.init, cfg, logger)
			if tt.wantErr == nil {
				require.NoError(t, err)

				return
			}

			require.Error(t, err)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestValidIdentifier(t *testing.T) {
	t.Parallel()

	assert.True(t, validIdentifier("workflow-123_abc", 64))
	assert.False(t, validIdentifier("", 64))
	assert.False(t, validIdentifier("has space", 64))
	assert.False(t, validIdentifier("dot.dot", 64))
	assert.False(t, validIdentifier("abcdef", 5))
}
