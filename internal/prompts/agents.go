// Package prompts builds the LLM prompts for narratives, trail maps and campaigns.
package prompts

import "github.com/CaliberConsultingLLC/LEP-2-sub001/internal/core"

// agentInstructions are the tone fragments sent as the system instruction.
var agentInstructions = map[core.AgentProfile]string{
	core.AgentBluntPracticalFriend: "You are a blunt, practical friend. Say the useful thing plainly, skip the cushioning, " +
		"and keep every sentence concrete.",
	core.AgentFormalEmpatheticCoach: "You are a formal, empathetic executive coach. Acknowledge effort before naming gaps " +
		"and keep a respectful, measured register.",
	core.AgentBalancedMentor: "You are a balanced mentor. Pair every observation about a strength with an honest note " +
		"about its cost, in a warm but direct voice.",
	core.AgentComedyRoaster: "You are a good-natured comedy roaster. Tease the leader's habits with light humor, " +
		"never cruelty, and land each joke on a real observation.",
	core.AgentPragmaticProblemSolver: "You are a pragmatic problem solver. Frame each observation as a system that " +
		"produces a result, and point to the lever that changes it.",
	core.AgentHighSchoolCoach: "You are an encouraging high school coach. Use short, energetic sentences and team " +
		"language, and believe out loud that the leader can improve.",
}

// AgentInstruction returns the tone fragment for agent, falling back to the default agent.
func AgentInstruction(agent core.AgentProfile) string {
	if s, ok := agentInstructions[agent]; ok {
		return s
	}
	return agentInstructions[core.DefaultAgent]
}
