package model

// ScoreMetrics 评分输入,全部来自各分析器的既有输出
type ScoreMetrics struct {
	LpProviderCount int      `json:"lpProviderCount"`
	LpLockedPct     float64  `json:"lpLockedPct"`
	Top1Pct         float64  `json:"top1Pct"`
	Top10Pct        float64  `json:"top10Pct"`
	Traders24h      int      `json:"traders24h"`
	VipHits         int      `json:"vipHits"`
	Revived         bool     `json:"revived"`
	AgeMinutes      *float64 `json:"ageMinutes"`
	FdvToMcRatio    float64  `json:"fdvToMcRatio"`
}

// ScoreThresholds 各项指标的达标阈值
type ScoreThresholds struct {
	MinLpProviders int     `json:"minLpProviders"`
	MinLpLockedPct float64 `json:"minLpLockedPct"`
	MaxTop1Pct     float64 `json:"maxTop1Pct"`
	MaxTop10Pct    float64 `json:"maxTop10Pct"`
	MinTraders24h  int     `json:"minTraders24h"`
	MinVipHits     int     `json:"minVipHits"`
	MinAgeMinutes  float64 `json:"minAgeMinutes"`
}

// ScoreWeights 各项指标的权重
type ScoreWeights struct {
	LpCount     float64 `json:"lpCount"`
	LpLocked    float64 `json:"lpLocked"`
	HoldersDist float64 `json:"holdersDist"`
	Activity    float64 `json:"activity"`
	Vip         float64 `json:"vip"`
	Revival     float64 `json:"revival"`
	Age         float64 `json:"age"`
	FdvToMc     float64 `json:"fdvToMc"`
}

// ScoreResult 评分结果,reasons 按评估顺序列出未达标项
type ScoreResult struct {
	Score   float64  `json:"score"`
	Reasons []string `json:"reasons"`
}
