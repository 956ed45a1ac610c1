package analytics

import (
	"math"
	"math/rand"
	"sort"

	"gonum.org/v1/gonum/floats"
)

// 随机森林参数，与最初的参考模型保持一致：100 棵树、最大深度 10、固定种子
const (
	forestTrees    = 100
	forestMaxDepth = 10
	forestSeed     = 42
)

// treeNode 决策树节点。dist 非 nil 时为叶节点，存放归一化类别分布
type treeNode struct {
	feature   int
	threshold float64
	left      *treeNode
	right     *treeNode
	dist      []float64
}

type decisionTree struct {
	root *treeNode
}

// randomForest 加权 CART 随机森林分类器。
// 训练完成后只读，可被任意数量的预测调用并发使用。
type randomForest struct {
	trees      []*decisionTree
	numClasses int
}

// fitForest 训练随机森林。weights 为样本权重（用于类别均衡），
// 每棵树使用自助采样与 sqrt(维度) 的随机特征子集。
func fitForest(X [][]float64, y []int, weights []float64, numClasses int) *randomForest {
	rng := rand.New(rand.NewSource(forestSeed))
	maxFeatures := int(math.Sqrt(float64(len(X[0]))))
	if maxFeatures < 1 {
		maxFeatures = 1
	}

	f := &randomForest{
		trees:      make([]*decisionTree, 0, forestTrees),
		numClasses: numClasses,
	}
	n := len(X)
	for t := 0; t < forestTrees; t++ {
		idx := make([]int, n)
		for i := range idx {
			idx[i] = rng.Intn(n)
		}
		root := buildNode(X, y, weights, idx, numClasses, maxFeatures, 0, rng)
		f.trees = append(f.trees, &decisionTree{root: root})
	}
	return f
}

// classDist 样本子集的加权类别分布（未归一化）
func classDist(y []int, weights []float64, idx []int, numClasses int) []float64 {
	dist := make([]float64, numClasses)
	for _, i := range idx {
		dist[y[i]] += weights[i]
	}
	return dist
}

// giniImpurity 加权基尼不纯度
func giniImpurity(dist []float64) float64 {
	total := floats.Sum(dist)
	if total <= 0 {
		return 0
	}
	g := 1.0
	for _, w := range dist {
		p := w / total
		g -= p * p
	}
	return g
}

func leafNode(dist []float64) *treeNode {
	total := floats.Sum(dist)
	norm := make([]float64, len(dist))
	if total > 0 {
		for i, w := range dist {
			norm[i] = w / total
		}
	}
	return &treeNode{dist: norm}
}

func buildNode(X [][]float64, y []int, weights []float64, idx []int, numClasses, maxFeatures, depth int, rng *rand.Rand) *treeNode {
	dist := classDist(y, weights, idx, numClasses)
	if depth >= forestMaxDepth || len(idx) < 2 || giniImpurity(dist) == 0 {
		return leafNode(dist)
	}

	bestGini := math.Inf(1)
	bestFeature := -1
	bestThreshold := 0.0

	// 随机抽取 maxFeatures 个候选特征
	features := rng.Perm(len(X[0]))[:maxFeatures]
	total := floats.Sum(dist)

	for _, feat := range features {
		// 按特征值排序后扫描所有切分点
		order := make([]int, len(idx))
		copy(order, idx)
		sort.Slice(order, func(a, b int) bool {
			return X[order[a]][feat] < X[order[b]][feat]
		})

		leftDist := make([]float64, numClasses)
		rightDist := make([]float64, numClasses)
		copy(rightDist, dist)
		leftTotal := 0.0

		for k := 0; k < len(order)-1; k++ {
			i := order[k]
			leftDist[y[i]] += weights[i]
			rightDist[y[i]] -= weights[i]
			leftTotal += weights[i]

			// 相同特征值之间不能切分
			if X[order[k]][feat] == X[order[k+1]][feat] {
				continue
			}

			g := (leftTotal*giniImpurity(leftDist) + (total-leftTotal)*giniImpurity(rightDist)) / total
			if g < bestGini {
				bestGini = g
				bestFeature = feat
				bestThreshold = (X[order[k]][feat] + X[order[k+1]][feat]) / 2
			}
		}
	}

	if bestFeature < 0 {
		return leafNode(dist)
	}

	var leftIdx, rightIdx []int
	for _, i := range idx {
		if X[i][bestFeature] <= bestThreshold {
			leftIdx = append(leftIdx, i)
		} else {
			rightIdx = append(rightIdx, i)
		}
	}
	if len(leftIdx) == 0 || len(rightIdx) == 0 {
		return leafNode(dist)
	}

	return &treeNode{
		feature:   bestFeature,
		threshold: bestThreshold,
		left:      buildNode(X, y, weights, leftIdx, numClasses, maxFeatures, depth+1, rng),
		right:     buildNode(X, y, weights, rightIdx, numClasses, maxFeatures, depth+1, rng),
	}
}

func (t *decisionTree) predict(x []float64) []float64 {
	node := t.root
	for node.dist == nil {
		if x[node.feature] <= node.threshold {
			node = node.left
		} else {
			node = node.right
		}
	}
	return node.dist
}

// predictProba 各棵树叶分布的平均值，和为 1
func (f *randomForest) predictProba(x []float64) []float64 {
	proba := make([]float64, f.numClasses)
	for _, t := range f.trees {
		floats.Add(proba, t.predict(x))
	}
	floats.Scale(1/float64(len(f.trees)), proba)
	return proba
}
