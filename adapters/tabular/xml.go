package tabular

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"io"
	"strings"

	"datadash/domain/dataset"
)

type xmlNode struct {
	name     string
	attrs    []xml.Attr
	children []*xmlNode
	text     strings.Builder
}

// ParseXML reads a document whose root element's children are rows. Each
// row's attributes and leaf child elements become columns.
func ParseXML(content []byte) (*dataset.Dataset, error) {
	root, err := decodeXMLTree(content)
	if err != nil {
		return nil, err
	}
	if len(root.children) == 0 {
		return nil, fmt.Errorf("XML document has no row elements under <%s>", root.name)
	}

	var header []string
	headerIndex := make(map[string]int)
	column := func(name string) int {
		j, ok := headerIndex[name]
		if !ok {
			j = len(header)
			headerIndex[name] = j
			header = append(header, name)
		}
		return j
	}

	rows := make([]map[int]string, len(root.children))
	for i, rowNode := range root.children {
		row := make(map[int]string)
		for _, attr := range rowNode.attrs {
			row[column(attr.Name.Local)] = attr.Value
		}
		for _, field := range rowNode.children {
			row[column(field.name)] = strings.TrimSpace(field.text.String())
		}
		if len(rowNode.attrs) == 0 && len(rowNode.children) == 0 {
			row[column(rowNode.name)] = strings.TrimSpace(rowNode.text.String())
		}
		rows[i] = row
	}

	table := make([][]string, len(rows))
	for i, row := range rows {
		cells := make([]string, len(header))
		for j, v := range row {
			cells[j] = v
		}
		table[i] = cells
	}
	return buildFromRows(FormatXML, header, table, rejectWideRows)
}

func decodeXMLTree(content []byte) (*xmlNode, error) {
	decoder := xml.NewDecoder(bytes.NewReader(content))
	var root *xmlNode
	var stack []*xmlNode

	for {
		tok, err := decoder.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("malformed XML: %w", err)
		}

		switch t := tok.(type) {
		case xml.StartElement:
			node := &xmlNode{name: t.Name.Local, attrs: t.Attr}
			if len(stack) == 0 {
				if root != nil {
					return nil, fmt.Errorf("malformed XML: multiple root elements")
				}
				root = node
			} else {
				parent := stack[len(stack)-1]
				parent.children = append(parent.children, node)
			}
			stack = append(stack, node)
		case xml.EndElement:
			stack = stack[:len(stack)-1]
		case xml.CharData:
			if len(stack) > 0 {
				stack[len(stack)-1].text.Write(t)
			}
		}
	}

	if root == nil {
		return nil, fmt.Errorf("XML document has no root element")
	}
	if len(stack) != 0 {
		return nil, fmt.Errorf("malformed XML: unclosed element <%s>", stack[len(stack)-1].name)
	}
	return root, nil
}
