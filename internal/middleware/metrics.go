package middleware

import (
	"fmt"
	"sync"
	"time"

	"marinews/internal/infrastructure/logger"
)

// MetricsCollector 收集一次抓取流程的统计指标
type MetricsCollector struct {
	mu sync.RWMutex

	startTime time.Time

	// 订阅源统计
	sourcesTotal   int64
	sourcesOK      int64
	sourcesFailed  int64
	sourcesSkipped int64

	// 条目统计
	entriesSeen    int64
	entriesKept    int64
	entriesExpired int64
	entriesMatched int64

	// 缓存统计
	cacheHits   int64
	cacheMisses int64

	// 单个源的抓取耗时
	fetchDurations []time.Duration
}

// NewMetricsCollector 创建新的指标收集器
func NewMetricsCollector() *MetricsCollector {
	return &MetricsCollector{
		startTime:      time.Now(),
		fetchDurations: make([]time.Duration, 0, 64),
	}
}

// RecordSourceFetch 记录一个订阅源的抓取结果
func (m *MetricsCollector) RecordSourceFetch(duration time.Duration, success bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.sourcesTotal++
	if success {
		m.sourcesOK++
	} else {
		m.sourcesFailed++
	}

	m.fetchDurations = append(m.fetchDurations, duration)
	if len(m.fetchDurations) > 1000 {
		m.fetchDurations = m.fetchDurations[1:]
	}
}

// RecordSourceSkipped 记录一个被跳过的订阅源（非法URL或限流）
func (m *MetricsCollector) RecordSourceSkipped() {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.sourcesTotal++
	m.sourcesSkipped++
}

// RecordEntries 记录条目处理结果
func (m *MetricsCollector) RecordEntries(seen, kept, expired, matched int64) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.entriesSeen += seen
	m.entriesKept += kept
	m.entriesExpired += expired
	m.entriesMatched += matched
}

// RecordCacheHit 记录一次缓存命中
func (m *MetricsCollector) RecordCacheHit() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.cacheHits++
}

// RecordCacheMiss 记录一次缓存未命中
func (m *MetricsCollector) RecordCacheMiss() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.cacheMisses++
}

// Report 一次运行的指标报告
type Report struct {
	StartTime       time.Time
	Uptime          time.Duration
	SourcesTotal    int64
	SourcesOK       int64
	SourcesFailed   int64
	SourcesSkipped  int64
	EntriesSeen     int64
	EntriesKept     int64
	EntriesExpired  int64
	EntriesMatched  int64
	CacheHits       int64
	CacheMisses     int64
	AvgFetchLatency time.Duration
}

// GetReport 获取指标报告
func (m *MetricsCollector) GetReport() Report {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return Report{
		StartTime:       m.startTime,
		Uptime:          time.Since(m.startTime),
		SourcesTotal:    m.sourcesTotal,
		SourcesOK:       m.sourcesOK,
		SourcesFailed:   m.sourcesFailed,
		SourcesSkipped:  m.sourcesSkipped,
		EntriesSeen:     m.entriesSeen,
		EntriesKept:     m.entriesKept,
		EntriesExpired:  m.entriesExpired,
		EntriesMatched:  m.entriesMatched,
		CacheHits:       m.cacheHits,
		CacheMisses:     m.cacheMisses,
		AvgFetchLatency: m.averageFetchDuration(),
	}
}

// averageFetchDuration 获取平均抓取耗时（调用方需持有读锁）
func (m *MetricsCollector) averageFetchDuration() time.Duration {
	if len(m.fetchDurations) == 0 {
		return 0
	}

	var total time.Duration
	for _, d := range m.fetchDurations {
		total += d
	}
	return total / time.Duration(len(m.fetchDurations))
}

// LogMetrics 记录指标到日志
func LogMetrics(metrics *MetricsCollector) {
	report := metrics.GetReport()
	logger.Info("抓取指标上报",
		"uptime", report.Uptime,
		"sources_total", report.SourcesTotal,
		"sources_ok", report.SourcesOK,
		"sources_failed", report.SourcesFailed,
		"sources_skipped", report.SourcesSkipped,
		"entries_seen", report.EntriesSeen,
		"entries_kept", report.EntriesKept,
		"entries_expired", report.EntriesExpired,
		"entries_matched", report.EntriesMatched,
		"cache_hits", report.CacheHits,
		"cache_misses", report.CacheMisses,
		"avg_fetch_latency", fmt.Sprintf("%dms", report.AvgFetchLatency.Milliseconds()),
	)
}
