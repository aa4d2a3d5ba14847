package graph

import (
	"fmt"
	"strings"

	"github.com/awalterschulze/gographviz"
)

type Field struct {
	Name, Value string
}

type Child struct {
	Name string
	Node *Node
}

type Node struct {
	Name     string
	Fields   []Field
	Children []Child
}

func NewNode(name string) *Node {
	return &Node{
		Name: name,
	}
}

func (n *Node) AddField(name, value string) {
	n.Fields = append(n.Fields, Field{
		Name:  name,
		Value: value,
	})
}

func (n *Node) AddChild(name string, node *Node) {
	n.Children = append(n.Children, Child{
		Name: name,
		Node: node,
	})
}

// Show renders the node tree as a graphviz graph with record-shaped nodes.
func Show(node *Node) (*gographviz.Graph, error) {
	graph := gographviz.NewGraph()
	graph.Directed = true
	if err := graph.AddAttr("", "rankdir", "LR"); err != nil {
		return nil, fmt.Errorf("couldn't set graph attribute: %w", err)
	}
	builder := &graphBuilder{
		graph:        graph,
		nameCounters: make(map[string]int),
	}

	if _, err := builder.getGraphNode(node); err != nil {
		return nil, err
	}

	return graph, nil
}

type graphBuilder struct {
	graph        *gographviz.Graph
	nameCounters map[string]int
}

func (gb *graphBuilder) getID(name string) string {
	count := gb.nameCounters[name]
	gb.nameCounters[name]++
	return fmt.Sprintf("%s_%d", strings.Replace(name, " ", "_", -1), count)
}

func (gb *graphBuilder) getGraphNode(node *Node) (string, error) {
	fields := make([]string, len(node.Fields))
	for i, field := range node.Fields {
		fields[i] = fmt.Sprintf("<%s> %s: %s", field.Name, field.Name, field.Value)
	}
	childPorts := make([]string, len(node.Children))
	for i, child := range node.Children {
		childPorts[i] = fmt.Sprintf("<%s> %s", child.Name, child.Name)
	}

	var labelParts []string
	labelParts = append(labelParts, fmt.Sprintf("<f0> %s", node.Name))

	if len(fields) > 0 {
		labelParts = append(labelParts, strings.Join(fields, "|"))
	}
	if len(childPorts) > 0 {
		labelParts = append(labelParts, strings.Join(childPorts, "|"))
	}

	label := fmt.Sprintf(
		"\"{{%s}}\"",
		strings.Join(labelParts, "}|{"),
	)

	id := gb.getID(node.Name)
	if err := gb.graph.AddNode("", id, map[string]string{
		"shape": "record",
		"label": label,
	}); err != nil {
		return "", fmt.Errorf("couldn't add graph node: %w", err)
	}

	for _, child := range node.Children {
		childGraphNode, err := gb.getGraphNode(child.Node)
		if err != nil {
			return "", err
		}
		if err := gb.graph.AddPortEdge(id, child.Name, childGraphNode, "", true, map[string]string{}); err != nil {
			return "", fmt.Errorf("couldn't add graph edge: %w", err)
		}
	}
	return id, nil
}
