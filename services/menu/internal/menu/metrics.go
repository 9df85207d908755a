package menu

import (
	"github.com/gomenu/pkg/metric"
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics 菜单服务指标，nil 时不记录
type Metrics struct {
	TreeUpdates  metric.IncrementalCounter
	TreeNodes    metric.IncrementalCounter
	CacheLookups metric.IncrementalCounter
}

// NewMetrics 在指定注册表上创建指标
func NewMetrics(reg prometheus.Registerer) *Metrics {
	return &Metrics{
		TreeUpdates: metric.NewCounterWithRegistry(reg, "menu_tree_updates_total",
			"Menu tree update requests by result.", "result"),
		TreeNodes: metric.NewCounterWithRegistry(reg, "menu_tree_nodes_total",
			"Menu tree nodes processed by outcome.", "outcome"),
		CacheLookups: metric.NewCounterWithRegistry(reg, "menu_alias_cache_lookups_total",
			"Menu alias cache lookups by result.", "result"),
	}
}

func (m *Metrics) treeUpdate(result string) {
	if m != nil {
		m.TreeUpdates.Increment(result)
	}
}

func (m *Metrics) treeNodes(updated, skipped int) {
	if m == nil {
		return
	}
	m.TreeNodes.Add(float64(updated), "updated")
	m.TreeNodes.Add(float64(skipped), "skipped")
}

func (m *Metrics) cacheLookup(result string) {
	if m != nil {
		m.CacheLookups.Increment(result)
	}
}
