package report

import (
	"fmt"

	"github.com/Attamusc/weekly-report-bot/internal/activity"
	"github.com/Attamusc/weekly-report-bot/internal/ai"
)

// Output ceilings, in provider tokens, of the per-item and correlator chains
const (
	ItemMaxOut1      = 256
	ItemMaxOut2      = 128
	CorrelateMaxOut1 = 512
	CorrelateMaxOut2 = 256
)

// targetOrDefault names who the narrative is about
func targetOrDefault(target string) string {
	if target == "" {
		return "key participants"
	}
	return target
}

func commitPrompt(rec *activity.Record, patch string) ai.ChainPrompt {
	return ai.ChainPrompt{
		System: fmt.Sprintf("You review a commit patch written by %s. Read the date, subject, "+
			"changed files, diff hunks and sign-off. Identify what changed and which kinds of files "+
			"were touched, ranking source code above scripts and scripts above documentation. Keep "+
			"documentation edits separate from code edits even when the prose is technical. "+
			"Produce a list of the key elements.", rec.Actor),
		User1: fmt.Sprintf("Commit patch: %s\n\nCommit description: %s\n\nList the key elements: "+
			"a high-level description of the change and the kinds of files affected, code first, "+
			"then scripts, then documentation. One element per item.", patch, rec.Label),
		MaxOut1: ItemMaxOut1,
		User2: "From the key elements you listed, summarize this contribution to the project. " +
			"Mention the kinds of files affected and the overall change, keeping code, scripts and " +
			"documentation apart. Answer as '(summary of changes). (overall impact of changes).' " +
			"Stay under 128 tokens.",
		MaxOut2:       ItemMaxOut2,
		CorrelationID: "commit-" + shaSerial(rec),
	}
}

func issuePrompt(rec *activity.Record, number, target string) ai.ChainPrompt {
	return ai.ChainPrompt{
		System: fmt.Sprintf("User '%s' opened the issue titled '%s'. Analyze the issue posts and "+
			"extract the main problem or question, the environment it occurred in, the steps the "+
			"author and commenters took, notable discussion, and any solution, consensus or "+
			"pending work.", rec.Actor, rec.Label),
		User1: fmt.Sprintf("Issue posts: %s\n\nList: the main problem raised; the environment or "+
			"conditions (hardware, OS, versions); actions taken by the author or commenters; key "+
			"points of view in the thread; solutions found, consensus reached or open tasks; the "+
			"role each participant played.", rec.Body),
		MaxOut1: ItemMaxOut1,
		User2: fmt.Sprintf("Briefly summarize the core problem and the overall contribution of '%s' "+
			"to resolving this issue. Stay under 128 tokens.", targetOrDefault(target)),
		MaxOut2:       ItemMaxOut2,
		CorrelationID: "issue-" + number,
	}
}

func discussionPrompt(rec *activity.Record, slug, target string) ai.ChainPrompt {
	return ai.ChainPrompt{
		System: "Analyze the posts of a GitHub discussion. Extract the main topic or question, the " +
			"steps the original author and commenters took, notable discussion, and any solution, " +
			"consensus or pending work.",
		User1: fmt.Sprintf("Discussion posts: %s\n\nList: the main topic raised; actions taken by "+
			"the author or commenters; key points of view in the thread; solutions found, consensus "+
			"reached or open tasks; the role each participant played.", rec.Body),
		MaxOut1: ItemMaxOut1,
		User2: fmt.Sprintf("Briefly summarize the core topic and the overall contribution of '%s' "+
			"to this discussion. Stay under 128 tokens.", targetOrDefault(target)),
		MaxOut2:       ItemMaxOut2,
		CorrelationID: "discussion-" + slug,
	}
}

func correlatePrompt(owner, repo, target, assembled string) ai.ChainPrompt {
	who := "key participants'"
	if target != "" {
		who = target + "'s"
	}
	return ai.ChainPrompt{
		System: "Analyze a week of GitHub activity for a project. Find the most impactful " +
			"contributions and the links between commits, issues and discussions: commits that " +
			"resolve issues, discussions that led to commits, issues raised by earlier discussions. " +
			"Name concrete code changes, fixes and improvements so the week's technical progress " +
			"and its narrative are both visible.",
		User1: fmt.Sprintf("Activity for %s/%s:\n\n%s\n\nDetail %s significant technical "+
			"contributions per contributor: individual tasks, code improvements and bug fixes, "+
			"most impactful first. At the same time identify connections, tracing discussion to "+
			"issue to commit where the data shows it. Give concrete examples of both impact and "+
			"connection.", owner, repo, assembled, who),
		MaxOut1: CorrelateMaxOut1,
		User2: fmt.Sprintf("Merge the contributions and their connections into one summary of %s "+
			"week. Relate the work to the project's technical goals, point out recurring patterns, "+
			"and close with a short synthesis of how the individual efforts moved the project "+
			"forward. Stay under 256 tokens.", who),
		MaxOut2:       CorrelateMaxOut2,
		CorrelationID: fmt.Sprintf("correlate-%s/%s", owner, repo),
	}
}

// shaSerial is the first five characters of a commit's sha
func shaSerial(rec *activity.Record) string {
	ref := lastSegment(rec.SourceRef)
	if len(ref) > 5 {
		return ref[:5]
	}
	if ref == "" {
		return "00000"
	}
	return ref
}
