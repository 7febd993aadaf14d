package layout

import (
	"fmt"
	"math"

	"profnet/domain/network"
)

const (
	ColorCenter       = "#e74c3c"
	ColorProfessional = "#5dade2"
	ColorInterest     = "#f1c40f"
)

// Radius is the visual radius of a node. Interest nodes grow with the number
// of professionals holding the interest.
func Radius(n network.Node) float64 {
	switch {
	case n.Kind == network.KindInterest:
		r := 4 + math.Sqrt(float64(n.ConnectionCount))*1.5
		return math.Max(4, math.Min(r, 15))
	case n.IsCenter:
		return 12
	default:
		return 7
	}
}

func Color(n network.Node) string {
	switch {
	case n.Kind == network.KindInterest:
		return ColorInterest
	case n.IsCenter:
		return ColorCenter
	default:
		return ColorProfessional
	}
}

// Tooltip is the hover text for a node.
func Tooltip(n network.Node) string {
	if n.Kind == network.KindInterest {
		return fmt.Sprintf("研究兴趣: %s\n关联人数: %d", n.Label, n.ConnectionCount)
	}
	affiliation := n.Affiliation
	if affiliation == "" {
		affiliation = "未知"
	}
	return fmt.Sprintf("%s\n机构: %s", n.Name, affiliation)
}

// Title is the heading shown above an active graph.
func Title(snap *network.Snapshot) string {
	return fmt.Sprintf("(%s 的关系网络)", snap.CenterName)
}
