package model

import (
	"math"

	"gonum.org/v1/gonum/integrate"
	"gonum.org/v1/gonum/stat"

	"github.com/PanchangniDhangar/churn-prediction-system-hybrid-cloud/pkg/loss"
)

func Accuracy(yTrue, yPred []int) float64 {
	if len(yTrue) == 0 {
		return 0
	}
	c := 0
	for i := range yTrue {
		if yTrue[i] == yPred[i] {
			c++
		}
	}
	return float64(c) / float64(len(yTrue))
}

// BinaryPredFromProba labels a row 1 when its probability is strictly above
// threshold.
func BinaryPredFromProba(proba []float64, threshold float64) []int {
	out := make([]int, len(proba))
	for i, p := range proba {
		if p > threshold {
			out[i] = 1
		} else {
			out[i] = 0
		}
	}
	return out
}

// Classification metrics (binary, labels 0/1)
func PrecisionRecallF1(yTrue []int, yPred []int) (prec, rec, f1 float64) {
	tp, fp, fn := 0, 0, 0
	for i := range yTrue {
		if yPred[i] == 1 && yTrue[i] == 1 {
			tp++
		}
		if yPred[i] == 1 && yTrue[i] == 0 {
			fp++
		}
		if yPred[i] == 0 && yTrue[i] == 1 {
			fn++
		}
	}
	if tp+fp > 0 {
		prec = float64(tp) / float64(tp+fp)
	}
	if tp+fn > 0 {
		rec = float64(tp) / float64(tp+fn)
	}
	if prec+rec > 0 {
		f1 = 2 * prec * rec / (prec + rec)
	}
	return
}

func Recall(yTrue, yPred []int) float64 {
	_, rec, _ := PrecisionRecallF1(yTrue, yPred)
	return rec
}

// ROC returns the false and true positive rates of scores against 0/1
// labels, ordered from the strictest cutoff to the loosest.
func ROC(yTrue []int, scores []float64) (fpr, tpr []float64) {
	n := len(scores)
	x := make([]float64, n)
	copy(x, scores)
	classes := make([]bool, n)
	weights := make([]float64, n)
	for i := range yTrue {
		classes[i] = yTrue[i] == 1
		weights[i] = 1
	}
	stat.SortWeightedLabeled(x, classes, weights)
	tpr, fpr, _ = stat.ROC(nil, x, classes, weights)
	return fpr, tpr
}

// ROCAUC is the area under the ROC curve. It is NaN unless both classes are
// present.
func ROCAUC(yTrue []int, scores []float64) float64 {
	pos := 0
	for _, v := range yTrue {
		if v == 1 {
			pos++
		}
	}
	if pos == 0 || pos == len(yTrue) {
		return math.NaN()
	}
	fpr, tpr := ROC(yTrue, scores)
	return integrate.Trapezoidal(fpr, tpr)
}

// LogLoss is the binary cross-entropy of probabilities against 0/1 labels.
func LogLoss(yTrue []int, proba []float64) float64 {
	y := make([]float64, len(yTrue))
	for i, v := range yTrue {
		y[i] = float64(v)
	}
	return loss.LogLoss(y, proba)
}
