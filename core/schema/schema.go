// Package schema is the single place enumerating every store collection, its
// record type and its bootstrap document key. Derived collections register
// with an empty key and are recomputed instead of seeded.
package schema

import (
	"github.com/mkuu/darasa/core/billing"
	"github.com/mkuu/darasa/core/class"
	"github.com/mkuu/darasa/core/course"
	"github.com/mkuu/darasa/core/enrollment"
	"github.com/mkuu/darasa/core/lesson"
	"github.com/mkuu/darasa/core/module"
	"github.com/mkuu/darasa/core/notification"
	"github.com/mkuu/darasa/core/schedule"
	"github.com/mkuu/darasa/core/store"
	"github.com/mkuu/darasa/core/topic"
	"github.com/mkuu/darasa/core/user"
)

// Register binds every collection on the store. The bootstrap keys follow the
// seed documents' file names, which predate the collection names and do not
// always match them.
func Register(st *store.Store) {
	store.Register[user.User](st, user.Collection, "user")
	store.Register[notification.Notification](st, notification.Collection, "notifications")

	store.Register[course.Course](st, course.Collection, "course")
	store.Register[module.Module](st, module.Collection, "module")
	store.Register[topic.Topic](st, topic.Collection, "topic")
	store.Register[lesson.Lesson](st, lesson.Collection, "lesson")

	store.Register[course.CourseModule](st, course.ModuleLinkCollection, "coursemodule")
	store.Register[module.ModuleTopic](st, module.TopicLinkCollection, "moduletopic")
	store.Register[module.ModuleLesson](st, module.LessonLinkCollection, "modulelesson")

	store.Register[class.Class](st, class.Collection, "class")
	store.Register[class.Team](st, class.TeamCollection, "team")
	store.Register[class.ClassStudent](st, class.StudentLinkCollection, "classstudent")
	store.Register[class.ModuleTeam](st, class.TeamLinkCollection, "moduleteam")

	store.Register[enrollment.Enrollment](st, enrollment.Collection, "enrollment")
	store.Register[enrollment.ModuleAssignment](st, enrollment.AssignmentCollection, "moduleassignment")

	store.Register[schedule.Entry](st, schedule.Collection, "classschedulelessons")
	store.Register[schedule.Entry](st, schedule.ActiveCollection, "")

	store.Register[billing.PaymentTicket](st, billing.Collection, "")
}
