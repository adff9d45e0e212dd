package model

// Class 班级表，对应 classes
type Class struct {
	ClassID   uint   `gorm:"primaryKey;autoIncrement"           json:"class_id"`
	ClassName string `gorm:"type:varchar(50);not null;unique" json:"class_name"`
}

// TableName 指定表名
func (Class) TableName() string { return "classes" }

// Student 学生表，对应 students
type Student struct {
	StudentID       uint    `gorm:"primaryKey;autoIncrement"   json:"student_id"`
	FirstName       string  `gorm:"type:varchar(50);not null"  json:"first_name"`
	LastName        string  `gorm:"type:varchar(50);not null"  json:"last_name"`
	ClassID         uint    `gorm:"index"                      json:"class_id"`
	AdmissionNumber *string `gorm:"type:varchar(20);unique"    json:"admission_number,omitempty"`
}

// TableName 指定表名
func (Student) TableName() string { return "students" }

// FullName 展示用姓名
func (s *Student) FullName() string {
	return s.FirstName + " " + s.LastName
}

// Teacher 教师表，对应 teachers
// 约定一个班级一位教师，但不做基数约束
type Teacher struct {
	TeacherID    uint   `gorm:"primaryKey;autoIncrement"          json:"teacher_id"`
	FirstName    string `gorm:"type:varchar(50);not null"         json:"first_name"`
	LastName     string `gorm:"type:varchar(50);not null"         json:"last_name"`
	Email        string `gorm:"type:varchar(100);unique"          json:"email"`
	ClassID      *uint  `                                         json:"class_id,omitempty"`
	PasswordHash string `gorm:"type:varchar(100);not null;default:''" json:"-"`
}

// TableName 指定表名
func (Teacher) TableName() string { return "teachers" }
