package analysis

import (
	"sort"

	"github.com/muesli/clusters"
	"github.com/muesli/kmeans"
)

// DefaultClusterCount is the number of topic groups the review clustering
// report partitions into when enough reviews exist.
const DefaultClusterCount = 10

// ClusterItem is one labelled text going into clustering, typically a
// review title with its database id.
type ClusterItem struct {
	ID    uint64
	Label string
	Text  string
}

// textObservation wraps a ClusterItem to implement clusters.Observation.
type textObservation struct {
	item   *ClusterItem
	coords clusters.Coordinates
}

func (o textObservation) Coordinates() clusters.Coordinates {
	return o.coords
}

func (o textObservation) Distance(point clusters.Coordinates) float64 {
	return o.coords.Distance(point)
}

// ClusterTexts groups items by textual similarity: each item's text is
// vectorized with TF-IDF over the shared vocabulary, then partitioned with
// k-means.  k is clamped to the item count; fewer than two items, or a
// vocabulary that collapses to nothing, yields a single group holding
// whatever labels exist.  The result maps a 1-based group number to its
// member labels.
func ClusterTexts(items []ClusterItem, stopwords map[string]struct{}, k int) (map[int][]string, error) {
	groups := map[int][]string{}
	if len(items) == 0 {
		return groups, nil
	}
	if k < 1 {
		k = DefaultClusterCount
	}
	if k > len(items) {
		k = len(items)
	}
	if k < 2 {
		groups[1] = itemLabels(items)
		return groups, nil
	}

	texts := make([]string, len(items))
	for i, it := range items {
		texts[i] = it.Text
	}
	sparse := TFIDFVectors(texts, stopwords)

	// Fix a term order so every observation shares one coordinate space.
	terms := map[string]int{}
	for _, v := range sparse {
		for term := range v {
			if _, ok := terms[term]; !ok {
				terms[term] = len(terms)
			}
		}
	}
	if len(terms) == 0 {
		groups[1] = itemLabels(items)
		return groups, nil
	}

	var obs clusters.Observations
	for i := range items {
		coords := make(clusters.Coordinates, len(terms))
		for term, w := range sparse[i] {
			coords[terms[term]] = w
		}
		obs = append(obs, textObservation{item: &items[i], coords: coords})
	}

	km := kmeans.New()
	partition, err := km.Partition(obs, k)
	if err != nil {
		return nil, err
	}

	for i, cluster := range partition {
		labels := []string{}
		for _, o := range cluster.Observations {
			labels = append(labels, o.(textObservation).item.Label)
		}
		sort.Strings(labels)
		groups[i+1] = labels
	}
	return groups, nil
}

func itemLabels(items []ClusterItem) []string {
	labels := make([]string, len(items))
	for i, it := range items {
		labels[i] = it.Label
	}
	sort.Strings(labels)
	return labels
}
