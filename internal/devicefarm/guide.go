package devicefarm

// SetupGuide explains how to prepare an AWS account for real-device runs.
func SetupGuide() string {
	return setupGuide
}

// EnvTemplate lists the .env keys read at startup.
const EnvTemplate = `AWS_ACCESS_KEY_ID=your_access_key
AWS_SECRET_ACCESS_KEY=your_secret_key
AWS_DEVICE_FARM_PROJECT_ARN=your_project_arn
`

const setupGuide = `
# AWS Device Farm Setup Guide

## Free Tier
- 250 device minutes per month FREE
- Access to real iOS and Android devices

## Setup Steps

### 1. Create AWS Account
1. Go to https://aws.amazon.com/
2. Click "Create an AWS Account"
3. Follow the signup process

### 2. Enable Device Farm
1. Go to AWS Console: https://console.aws.amazon.com/
2. Search for "Device Farm"
3. Click "Create a new project"
4. Create a project named "StoreHunter"
5. Copy the Project ARN (looks like: arn:aws:devicefarm:us-west-2:123456789:project:abc-123)

### 3. Get AWS Credentials
1. Go to IAM console: https://console.aws.amazon.com/iam/
2. Click "Users" then "Add users"
3. Create user: "storehunter"
4. Attach policy: "AWSDeviceFarmFullAccess"
5. Create an access key and save the Access Key ID and Secret Access Key

### 4. Configure Credentials
Create a .env file in your working directory:

    AWS_ACCESS_KEY_ID=your_access_key_here
    AWS_SECRET_ACCESS_KEY=your_secret_key_here
    AWS_DEVICE_FARM_PROJECT_ARN=your_project_arn_here

## Cost Estimation

15 devices x 2 minutes per test = 30 minutes per full suite
- About 8 full suites per month fit in the free tier
- Additional minutes: $0.17/device minute

## Next Steps

    storehunter devicefarm list
`
