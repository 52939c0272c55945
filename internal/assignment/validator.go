package assignment

import (
	"errors"
	"fmt"

	"github.com/dencare-dev/staff-roster/backend/internal/domain"
)

// ValidateConfirm 决定当前选择是否允许确认指派
// 规则：
//  1. 选择不能为空，两份候选名单不能有交集，人数不能超过诊室容量
//  2. 所选槽位全部已排满时视为更新操作，只要求至少选择一名牙医或护士
//  3. 存在未排满的槽位时视为首次指派，诊室容量大于 0 的角色必须给出候选，
//     容量为 0 的角色不要求候选（表示该诊室不使用这个角色）
func ValidateConfirm(selectedSlots []*domain.Slot, room *domain.Room, dentistIDs []int64, nurseIDs []int64) error {
	if len(selectedSlots) == 0 {
		return errors.New("尚未选择任何槽位")
	}

	for _, dentistID := range dentistIDs {
		for _, nurseID := range nurseIDs {
			if dentistID == nurseID {
				return errors.New("同一名员工不能同时被选为牙医和护士")
			}
		}
	}

	if len(dentistIDs) > int(room.MaxDentists) {
		return fmt.Errorf("选择的牙医人数超过了诊室容量 %d", room.MaxDentists)
	}
	if len(nurseIDs) > int(room.MaxNurses) {
		return fmt.Errorf("选择的护士人数超过了诊室容量 %d", room.MaxNurses)
	}

	allFullyAssigned := true
	for _, slot := range selectedSlots {
		if !slot.FullyAssigned() {
			allFullyAssigned = false
			break
		}
	}

	if allFullyAssigned {
		// 更新已有排班
		if len(dentistIDs) == 0 && len(nurseIDs) == 0 {
			return errors.New("请至少选择一名牙医或护士")
		}
		return nil
	}

	// 首次指派
	if room.MaxDentists > 0 && len(dentistIDs) == 0 {
		return errors.New("该诊室需要指派牙医")
	}
	if room.MaxNurses > 0 && len(nurseIDs) == 0 {
		return errors.New("该诊室需要指派护士")
	}

	return nil
}

// ResolveReplacementRole 确定被替换员工在所选槽位中占用的角色
// 该员工在所选槽位中同时以两种角色出现时，无法确定要腾出哪个角色，
// 必须直接拒绝替换而不是猜测
func ResolveReplacementRole(staffID int64, selectedSlots []*domain.Slot) (domain.Role, error) {
	asDentist := false
	asNurse := false

	for _, slot := range selectedSlots {
		for _, d := range slot.Dentists {
			if d.ID == staffID {
				asDentist = true
			}
		}
		for _, n := range slot.Nurses {
			if n.ID == staffID {
				asNurse = true
			}
		}
	}

	switch {
	case asDentist && asNurse:
		return "", errors.New("该员工在所选槽位中同时担任牙医和护士，无法确定要替换的角色")
	case asDentist:
		return domain.RoleDentist, nil
	case asNurse:
		return domain.RoleNurse, nil
	default:
		return "", errors.New("该员工不在所选槽位的排班中")
	}
}
