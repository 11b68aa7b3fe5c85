package model

// CanContain reports whether a node of type parent may declare itself parent of a node of
// type child.
//
//	heading    -> subheading, text, table, image, icon, banner
//	subheading -> text, table, image, icon, banner
//	leaves     -> nothing
func CanContain(parent, child NodeType) bool {
	switch parent {
	case NodeHeading:
		switch child {
		case NodeSubheading, NodeText, NodeTable, NodeImage, NodeIcon, NodeBanner:
			return true
		default:
			return false
		}
	case NodeSubheading:
		return child.IsLeaf()
	case NodeText, NodeTable, NodeImage, NodeIcon, NodeBanner:
		return false
	default:
		return false
	}
}

// AllowedChildTypes lists the child types a node of type t accepts, in menu order.
func AllowedChildTypes(t NodeType) []NodeType {
	var out []NodeType
	for _, c := range NodeTypes {
		if CanContain(t, c) {
			out = append(out, c)
		}
	}
	return out
}
