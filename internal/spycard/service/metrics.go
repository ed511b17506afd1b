package service

import (
	"github.com/prometheus/client_golang/prometheus"
)

const metricsNamespace = "spycard"

// Metrics: 점수 엔진 Prometheus 지표 모음
type Metrics struct {
	MissionsCompleted      prometheus.Counter
	MissionPlayersFailed   prometheus.Counter
	PropagationFailures    prometheus.Counter
	ProfileVersionConflict prometheus.Counter
	JudgeRequests          *prometheus.CounterVec
	Recalculations         *prometheus.CounterVec
	CompleteMissionSeconds prometheus.Histogram
}

// NewMetrics: 지표를 생성하고 reg 에 등록한다. reg 가 nil 이면 등록하지 않는다.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		MissionsCompleted: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "missions_completed_total",
			Help:      "Number of CompleteMission calls that finished.",
		}),
		MissionPlayersFailed: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "mission_players_failed_total",
			Help:      "Players skipped during mission completion because persistence failed.",
		}),
		PropagationFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "profile_propagation_failures_total",
			Help:      "Score deltas that could not be applied to a Spy Card profile.",
		}),
		ProfileVersionConflict: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "profile_version_conflicts_total",
			Help:      "Versioned profile updates that lost a race and were retried.",
		}),
		JudgeRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "judge_requests_total",
			Help:      "AI judge calls by result.",
		}, []string{"result"}),
		Recalculations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "profile_recalculations_total",
			Help:      "Profile recalculations from history by result.",
		}, []string{"result"}),
		CompleteMissionSeconds: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: metricsNamespace,
			Name:      "complete_mission_duration_seconds",
			Help:      "Duration of CompleteMission calls.",
			Buckets:   prometheus.DefBuckets,
		}),
	}
	if reg != nil {
		reg.MustRegister(
			m.MissionsCompleted,
			m.MissionPlayersFailed,
			m.PropagationFailures,
			m.ProfileVersionConflict,
			m.JudgeRequests,
			m.Recalculations,
			m.CompleteMissionSeconds,
		)
	}
	return m
}

// 판정/재계산 결과 라벨
const (
	resultOK       = "ok"
	resultError    = "error"
	resultInvalid  = "invalid"
	resultUpdated  = "updated"
	resultNoScores = "no_scores"
)
