package contracts

// Pipeline Stage 정의 (SSOT)
// 모든 로그, 스냅샷, DB row에서 이 상수를 사용해야 함
//
// 파이프라인 흐름:
//   Collect → Select → Persist → Publish

// Stage represents a pipeline stage
type Stage string

const (
	// StageCollect: 외부 시세 제공자에서 지표 수집, 실패 필드는 0으로 대체
	// 위치: internal/collector/
	StageCollect Stage = "COLLECT"

	// StageSelect: dense rank → 합산 → Top K
	// 위치: internal/selection/
	StageSelect Stage = "SELECT"

	// StagePersist: 실행 이력 저장 (DB 설정 시에만)
	// 위치: internal/selection/repository.go
	StagePersist Stage = "PERSIST"

	// StagePublish: 실시간 구독자에게 결과 전달
	// 위치: internal/api/stream.go
	StagePublish Stage = "PUBLISH"
)

// String returns the string representation
func (s Stage) String() string {
	return string(s)
}

// AllStages returns the stages in execution order
func AllStages() []Stage {
	return []Stage{StageCollect, StageSelect, StagePersist, StagePublish}
}
