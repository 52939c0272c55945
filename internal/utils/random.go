package utils

import (
	"fmt"
	"math/rand"

	"github.com/dencare-dev/staff-roster/backend/internal/domain"
	"github.com/mozillazg/go-pinyin"
	"golang.org/x/crypto/bcrypt"
)

var commonSurnames = []string{
	"王", "李", "张", "刘", "陈", "杨", "赵", "黄", "周", "吴",
	"徐", "孙", "胡", "朱", "高", "林", "何", "郭", "马", "罗",
}
var commonNameCharacters = []string{
	"伟", "强", "芳", "敏", "静", "丽", "刚", "杰", "娟", "勇",
	"艳", "涛", "明", "军", "磊", "洋", "勇", "霞", "飞", "玲",
	"超", "华", "平", "辉", "梅", "鑫", "龙", "鹏", "玉", "斌",
	"庆", "建", "丹", "彬", "凤", "旭", "宁", "乐", "成", "欣",
}

func GenerateRandomChineseName() string {
	surname := commonSurnames[rand.Intn(len(commonSurnames))]
	nameLength := rand.Intn(2) + 1
	name := ""

	for i := 0; i < nameLength; i++ {
		name += commonNameCharacters[rand.Intn(len(commonNameCharacters))]
	}
	return surname + name
}

var roles = []domain.Role{
	domain.RoleDentist,
	domain.RoleNurse,
}

func GenerateRandomRole() domain.Role {
	return roles[rand.Intn(len(roles))]
}

var digits = "0123456789"

func GenerateUsernameFromChineseName(chineseName string) string {
	pinyinArray := pinyin.LazyConvert(chineseName, nil)
	username := ""

	for _, pinyin := range pinyinArray {
		length := rand.Intn(len(pinyin)) + 1
		username += pinyin[:length]
	}

	digitsLength := rand.Intn(3) + 1
	for i := 0; i < digitsLength; i++ {
		username += string(digits[rand.Intn(len(digits))])
	}

	return username
}

func GenerateRandomStaff(password string, emailDomainName string) (*domain.Staff, error) {
	fullName := GenerateRandomChineseName()
	username := GenerateUsernameFromChineseName(fullName)
	passwordHash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	role := GenerateRandomRole()
	staff := &domain.Staff{
		Username:     username,
		PasswordHash: string(passwordHash),
		FullName:     fullName,
		FirstName:    string([]rune(fullName)[1:]),
		LastName:     string([]rune(fullName)[:1]),
		Email:        username + "@" + emailDomainName,
		Phone:        "13" + GenerateRandomID(0, 9),
		EmployeeCode: "DC" + GenerateRandomID(0, 6),
		Roles:        []domain.Role{role},
		IsActive:     true,
	}

	return staff, nil
}

func GenerateRandomOTP() string {
	return fmt.Sprintf("%06d", rand.Intn(1000000))
}

var letters = []rune("abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789!@#$%^&*")

func GenerateRandomPassword(length int) string {
	random_password := make([]rune, length)
	for i := range random_password {
		random_password[i] = letters[rand.Intn(len(letters))]
	}
	return string(random_password)
}

func GenerateRandomID(letterLength int, digitLength int) string {
	random_id := make([]rune, letterLength+digitLength)
	for i := range random_id {
		if i < letterLength {
			random_id[i] = letters[rand.Intn(len(letters))]
		} else {
			random_id[i] = rune(digits[rand.Intn(len(digits))])
		}
	}
	return string(random_id)
}

var roomNames = []string{"一号诊室", "二号诊室", "三号诊室", "四号诊室", "种植室", "正畸室", "洁牙室"}
var subRoomNames = []string{"A 椅", "B 椅", "C 椅"}

func GenerateRandomRoom(index int) *domain.Room {
	room := &domain.Room{
		Name:        roomNames[index%len(roomNames)],
		MaxDentists: int32(rand.Intn(2) + 1),
		MaxNurses:   int32(rand.Intn(3)),
	}

	subRoomNum := rand.Intn(len(subRoomNames) + 1)
	for i := 0; i < subRoomNum; i++ {
		room.SubRooms = append(room.SubRooms, domain.SubRoom{Name: subRoomNames[i]})
	}

	return room
}

var shiftNames = []string{"上午班", "下午班", "晚班"}
var shiftTimes = [][2]string{
	{"08:00:00", "12:00:00"},
	{"13:30:00", "17:30:00"},
	{"18:00:00", "21:30:00"},
}

// 给指定日期生成一整天的槽位
func GenerateRandomDailySlots(date string, roomID int64, subRoomID *int64) []*domain.Slot {
	slots := make([]*domain.Slot, 0, len(shiftNames))
	for i, name := range shiftNames {
		slots = append(slots, &domain.Slot{
			Date:      date,
			ShiftName: name,
			StartTime: shiftTimes[i][0],
			EndTime:   shiftTimes[i][1],
			RoomID:    roomID,
			SubRoomID: subRoomID,
		})
	}
	return slots
}
