package main

import (
	"context"
	"database/sql"
	"flag"
	"log/slog"
	"math/rand"
	"os"
	"time"

	"github.com/dencare-dev/staff-roster/backend/internal/config"
	"github.com/dencare-dev/staff-roster/backend/internal/domain"
	"github.com/dencare-dev/staff-roster/backend/internal/identity"
	"github.com/dencare-dev/staff-roster/backend/internal/repository"
	"github.com/dencare-dev/staff-roster/backend/internal/seed"
	"github.com/dencare-dev/staff-roster/backend/internal/utils"

	_ "github.com/jackc/pgx/v5/stdlib"
)

func main() {
	var op int
	var n int
	var month string

	flag.IntVar(&op, "op", 0, "要执行的操作 (1: 插入随机员工, 2: 插入随机诊室, 3: 给指定月份生成槽位, 4: 随机填充排班, 5: 插入真实数据)")
	flag.IntVar(&n, "n", 5, "要插入的记录数量")
	flag.StringVar(&month, "month", time.Now().Format("2006-01"), "要生成槽位或随机排班的月份 (格式为 YYYY-MM)")
	flag.Parse()

	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))

	// 读取配置文件
	cfg, err := config.LoadConfig()
	if err != nil {
		logger.Error("无法读取配置文件", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// 创建数据库连接池
	dbpool, err := sql.Open("pgx", cfg.Database.DSN)
	if err != nil {
		logger.Error("无法创建数据库连接池", "error", err)
		return
	}
	defer dbpool.Close()

	dbpool.SetMaxOpenConns(cfg.Database.MaxOpenConns)
	dbpool.SetMaxIdleConns(cfg.Database.MaxIdleConns)
	dbpool.SetConnMaxIdleTime(time.Duration(cfg.Database.MaxIdleTime) * time.Second)

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.Database.ConnectTimeout)*time.Second)
	defer cancel()

	// sql.Open 只是创建数据库连接池对象，并不会立即连接到数据库，因此需要显式地 ping 一下
	if err := dbpool.PingContext(ctx); err != nil {
		logger.Error("无法连接到数据库", "error", err)
		return
	}

	// 创建 repository
	repo := repository.NewRepository(cfg, dbpool)

	// 执行操作
	switch op {
	case 0:
		slog.Error("未指定操作")
	case 1:
		if n <= 0 {
			slog.Error("请输入合法的员工数量")
		} else {
			cnt := n
			for i := 0; i < n; i++ {
				staff, err := utils.GenerateRandomStaff(cfg.Seed.Staff.Password, cfg.Email.UserDomain)
				if err != nil {
					slog.Error("无法生成随机员工", slog.String("error", err.Error()))
					continue
				}

				if err := repo.CreateStaff(staff); err != nil {
					slog.Error("无法插入员工", slog.String("error", err.Error()))
					continue
				}

				cnt--
			}

			slog.Info("插入员工成功", slog.Int("count", n-cnt))
		}
	case 2:
		if n <= 0 {
			slog.Error("请输入合法的诊室数量")
		} else {
			cnt := n
			for i := 0; i < n; i++ {
				room := utils.GenerateRandomRoom(i)
				if err := repo.CreateRoom(room); err != nil {
					slog.Error("无法插入诊室", slog.String("error", err.Error()))
					continue
				}

				cnt--
			}

			slog.Info("插入诊室成功", slog.Int("count", n-cnt))
		}
	case 3:
		monthStart, err := time.Parse("2006-01", month)
		if err != nil {
			slog.Error("月份格式不正确", slog.String("month", month))
			return
		}

		rooms, err := repo.GetAllRooms()
		if err != nil {
			slog.Error("无法获取所有诊室", slog.String("error", err.Error()))
			return
		}

		cnt := 0
		for day := monthStart; day.Month() == monthStart.Month(); day = day.AddDate(0, 0, 1) {
			date := day.Format("2006-01-02")
			for _, room := range rooms {
				// 有分诊椅的诊室按分诊椅生成槽位，没有的按诊室生成
				targets := []*int64{nil}
				if len(room.SubRooms) > 0 {
					targets = targets[:0]
					for i := range room.SubRooms {
						targets = append(targets, &room.SubRooms[i].ID)
					}
				}

				for _, subRoomID := range targets {
					for _, slot := range utils.GenerateRandomDailySlots(date, room.ID, subRoomID) {
						if err := repo.CreateSlot(slot); err != nil {
							slog.Error("无法插入槽位", slog.String("error", err.Error()))
							continue
						}
						cnt++
					}
				}
			}
		}

		slog.Info("生成槽位成功", slog.Int("count", cnt))
	case 4:
		monthStart, err := time.Parse("2006-01", month)
		if err != nil {
			slog.Error("月份格式不正确", slog.String("month", month))
			return
		}

		staffList, err := repo.GetAllStaff()
		if err != nil {
			slog.Error("无法获取所有员工", slog.String("error", err.Error()))
			return
		}

		dentists := make([]int64, 0)
		nurses := make([]int64, 0)
		for _, si := range identity.ResolveAll(staffList) {
			if si.HasRole(domain.RoleDentist) {
				dentists = append(dentists, si.ID)
			}
			if si.HasRole(domain.RoleNurse) {
				nurses = append(nurses, si.ID)
			}
		}
		if len(dentists) == 0 && len(nurses) == 0 {
			slog.Error("数据库中没有任何牙医或护士，请先插入员工")
			return
		}

		rooms, err := repo.GetAllRooms()
		if err != nil {
			slog.Error("无法获取所有诊室", slog.String("error", err.Error()))
			return
		}

		cnt := 0
		for day := monthStart; day.Month() == monthStart.Month(); day = day.AddDate(0, 0, 1) {
			date := day.Format("2006-01-02")
			for _, room := range rooms {
				for _, shiftName := range []string{"上午班", "下午班", "晚班"} {
					// 大约一半的班次保持空闲，方便测试冲突检测
					if rand.Intn(2) == 0 {
						continue
					}

					slots, err := repo.GetSlotsForShiftByRoom(room.ID, date, shiftName)
					if err != nil || len(slots) == 0 {
						continue
					}

					slotIDs := make([]int64, 0, len(slots))
					for _, slot := range slots {
						slotIDs = append(slotIDs, slot.ID)
					}

					assignDentists := make([]int64, 0)
					assignNurses := make([]int64, 0)
					if len(dentists) > 0 && room.MaxDentists > 0 {
						assignDentists = append(assignDentists, dentists[rand.Intn(len(dentists))])
					}
					if len(nurses) > 0 && room.MaxNurses > 0 {
						assignNurses = append(assignNurses, nurses[rand.Intn(len(nurses))])
					}
					if len(assignDentists) == 0 && len(assignNurses) == 0 {
						continue
					}

					modified, err := repo.AssignStaff(slotIDs, assignDentists, assignNurses)
					if err != nil {
						slog.Error("无法插入排班", slog.String("error", err.Error()))
						continue
					}
					cnt += int(modified)
				}
			}
		}

		slog.Info("随机填充排班成功", slog.Int("count", cnt))
	case 5:
		seed.SeedRealData(repo)
	default:
		slog.Error("指定的操作非法")
	}
}
