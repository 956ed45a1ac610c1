package analytics

import (
	"math"
	"math/rand"
	"sort"
	"sync/atomic"

	"integrity/models"
)

// 模型来源标识，调用方通过 model_type 区分答案来自哪条路径
const (
	ModelTypeML        = "ml"
	ModelTypeRuleBased = "rule_based"
)

// MinTrainSamples 训练所需的最少带缺陷样本数，
// 不足时分类器保持未训练状态，预测走规则回退
const MinTrainSamples = 10

// 训练集切分比例与固定种子，保证准确率评估可复现
const (
	testFraction = 0.2
	splitSeed    = 42
)

// TrainResult 训练结果
type TrainResult struct {
	Trained       bool     `json:"trained"`
	TrainAccuracy float64  `json:"train_accuracy"`
	TestAccuracy  float64  `json:"test_accuracy"`
	SampleCount   int      `json:"n_samples"`
	Classes       []string `json:"classes"`
}

// Prediction 单条记录的危险等级预测
type Prediction struct {
	Prediction    string             `json:"prediction"`
	Label         string             `json:"ml_label"`
	Probabilities map[string]float64 `json:"probabilities"` // 各类别概率（百分比，合计 100）
	Confidence    float64            `json:"confidence"`    // 最大类别概率（百分比）
	ModelType     string             `json:"model_type"`
}

// Classifier 危险等级分类器。构造完成后不可变，
// 重新训练产生新实例并整体替换，读取方不会看到半更新状态。
type Classifier struct {
	forest  *randomForest
	classes []string
}

var current atomic.Pointer[Classifier]

// Current 获取当前生效的分类器，未训练时为 nil
func Current() *Classifier {
	return current.Load()
}

// Replace 原子替换当前分类器（启动训练或导入后重训时调用）
func Replace(c *Classifier) {
	current.Store(c)
}

// TrainClassifier 在历史诊断数据上训练分类器。
// 仅使用带缺陷且具有合法危险等级标注的记录；样本不足时返回 nil 分类器，
// TrainResult.Trained 为 false。评估采用固定种子的 80/20 切分，
// 汇报训练集与保留集两个准确率，随后在全量样本上重训后投入使用。
func TrainClassifier(history []models.Inspection) (*Classifier, *TrainResult) {
	valid := map[string]bool{
		models.LabelNormal: true,
		models.LabelMedium: true,
		models.LabelHigh:   true,
	}

	var X [][]float64
	var labels []string
	for _, rec := range history {
		if !rec.DefectFound || !valid[rec.Label] {
			continue
		}
		X = append(X, Features(FromInspection(rec)))
		labels = append(labels, rec.Label)
	}

	n := len(X)
	if n < MinTrainSamples {
		return nil, &TrainResult{Trained: false, SampleCount: n}
	}

	// 类别编码：按字典序，与标签编码器行为一致
	classSet := map[string]int{}
	for _, l := range labels {
		classSet[l] = 0
	}
	classes := make([]string, 0, len(classSet))
	for l := range classSet {
		classes = append(classes, l)
	}
	sort.Strings(classes)
	for i, l := range classes {
		classSet[l] = i
	}

	y := make([]int, n)
	for i, l := range labels {
		y[i] = classSet[l]
	}

	// 固定种子的 80/20 切分
	rng := rand.New(rand.NewSource(splitSeed))
	perm := rng.Perm(n)
	nTest := int(float64(n) * testFraction)
	if nTest < 1 {
		nTest = 1
	}
	testIdx := perm[:nTest]
	trainIdx := perm[nTest:]

	trainForest := fitForest(X, y, balancedWeights(y, trainIdx, len(classes)), len(classes))
	trainAcc := accuracy(trainForest, X, y, trainIdx)
	testAcc := accuracy(trainForest, X, y, testIdx)

	// 评估完成后在全量样本上重训，线上模型不浪费保留集数据
	allIdx := make([]int, n)
	for i := range allIdx {
		allIdx[i] = i
	}
	finalForest := fitForest(X, y, balancedWeights(y, allIdx, len(classes)), len(classes))

	c := &Classifier{forest: finalForest, classes: classes}
	return c, &TrainResult{
		Trained:       true,
		TrainAccuracy: trainAcc,
		TestAccuracy:  testAcc,
		SampleCount:   n,
		Classes:       classes,
	}
}

// balancedWeights 逆频率类别权重：weight = total / (类别数 * 类别样本数)。
// 少数类不会在训练中被多数类淹没
func balancedWeights(y []int, idx []int, numClasses int) []float64 {
	counts := make([]float64, numClasses)
	for _, i := range idx {
		counts[y[i]]++
	}
	weights := make([]float64, len(y))
	total := float64(len(idx))
	for _, i := range idx {
		weights[i] = total / (float64(numClasses) * counts[y[i]])
	}
	return weights
}

func accuracy(f *randomForest, X [][]float64, y []int, idx []int) float64 {
	if len(idx) == 0 {
		return 0
	}
	correct := 0
	for _, i := range idx {
		if maxIndex(f.predictProba(X[i])) == y[i] {
			correct++
		}
	}
	return float64(correct) / float64(len(idx))
}

func maxIndex(v []float64) int {
	best := 0
	for i := 1; i < len(v); i++ {
		if v[i] > v[best] {
			best = i
		}
	}
	return best
}

// Predict 预测单条观测的危险等级。
// 未训练（接收者为 nil）时回退到规则分类，出参永不报错。
func (c *Classifier) Predict(o Observation) Prediction {
	if c == nil || c.forest == nil {
		return RuleBased(o)
	}

	proba := c.forest.predictProba(Features(o))
	best := maxIndex(proba)

	probabilities := make(map[string]float64, len(c.classes))
	for i, class := range c.classes {
		probabilities[class] = proba[i] * 100
	}

	label := c.classes[best]
	return Prediction{
		Prediction:    label,
		Label:         label,
		Probabilities: probabilities,
		Confidence:    round2(proba[best] * 100),
		ModelType:     ModelTypeML,
	}
}

// RuleBased 规则分类（未训练时的回退路径，也可作为可审计的基线）。
// 阈值固定：质量评级优先于深度阈值。
func RuleBased(o Observation) Prediction {
	label := models.LabelNormal
	confidence := 95.0

	if o.DefectFound {
		switch {
		case o.QualityGrade == models.GradeUnacceptable || o.Depth > 50:
			label = models.LabelHigh
			confidence = 90.0
		case o.QualityGrade == models.GradeNeedsAction || o.Depth > 30:
			label = models.LabelMedium
			confidence = 80.0
		default:
			label = models.LabelNormal
			confidence = 70.0
		}
	}

	return Prediction{
		Prediction:    label,
		Label:         label,
		Probabilities: map[string]float64{label: 100},
		Confidence:    confidence,
		ModelType:     ModelTypeRuleBased,
	}
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

func round4(v float64) float64 {
	return math.Round(v*10000) / 10000
}
