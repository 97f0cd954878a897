package selection

import "errors"

// Configuration errors. All are fatal to the current selection and never retried.
var (
	// ErrDuplicateID 동일 심볼이 두 번 등록됨
	ErrDuplicateID = errors.New("duplicate entity id")

	// ErrUnknownEntity 등록되지 않은 심볼
	ErrUnknownEntity = errors.New("unknown entity")

	// ErrUnknownMetric 한 번도 설정되지 않은 지표
	ErrUnknownMetric = errors.New("unknown metric")

	// ErrInvalidValue 음수, NaN, Inf
	ErrInvalidValue = errors.New("invalid metric value")

	// ErrColumnLengthMismatch rank 컬럼 길이 != 종목 수
	ErrColumnLengthMismatch = errors.New("column length mismatch")

	// ErrIncompleteTable 일부 종목에 지표 값이 없음
	ErrIncompleteTable = errors.New("incomplete metric table")

	// ErrTableFrozen 랭킹 시작 이후 테이블 변경 시도
	ErrTableFrozen = errors.New("metric table is frozen")

	// ErrNoMetrics 랭킹 지표가 하나도 없음
	ErrNoMetrics = errors.New("no ranking metrics configured")
)

// IsConfigurationError reports whether err belongs to the configuration error family
func IsConfigurationError(err error) bool {
	for _, target := range []error{
		ErrDuplicateID, ErrUnknownEntity, ErrUnknownMetric, ErrInvalidValue,
		ErrColumnLengthMismatch, ErrIncompleteTable, ErrTableFrozen, ErrNoMetrics,
	} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}
